package engine

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/franksops/autotransfer/config"
)

// ChmodDirective normalizes permissions on the receiving side.
const ChmodDirective = "--chmod=Du+w,Dugo+rx,Dgo-w,Fu+w,Fugo+r,Fgo-w,Fugo-x"

// Command is a resolved external command line.
type Command struct {
	Program string
	Args    []string
}

func (c Command) String() string {
	return c.Program + " " + strings.Join(c.Args, " ")
}

// TransferCommand builds the command line that sends path to the profile's
// destination.
func TransferCommand(program, path string, p *config.Profile) Command {
	return Command{
		Program: program,
		Args: []string{
			"--progress",
			"-Parvzy",
			ChmodDirective,
			"-e", fmt.Sprintf("ssh -p %d", p.Destination.Port),
			path,
			p.Destination.Remote(),
		},
	}
}

// Process is a started external command.
type Process interface {
	// Stdout and Stderr stream the process output. Both must be read to EOF
	// before calling Wait.
	Stdout() io.Reader
	Stderr() io.Reader

	// Wait blocks until the process exits and returns its exit code. A
	// process killed by a signal reports -1.
	Wait() (int, error)

	// Kill forcefully terminates the process and anything it spawned.
	Kill() error
}

// Launcher starts external commands.
type Launcher interface {
	Launch(ctx context.Context, cmd Command) (Process, error)
}

// ExecLauncher runs commands as child processes. Each child gets its own
// process group so the ssh session it spawns dies with it.
type ExecLauncher struct{}

func (ExecLauncher) Launch(ctx context.Context, c Command) (Process, error) {
	cmd := exec.CommandContext(ctx, c.Program, c.Args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	// A nil Stdin is connected to the null device: the tool sees EOF at once.
	cmd.Stdin = nil

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "stdout pipe")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.Wrap(err, "stderr pipe")
	}

	p := &execProcess{cmd: cmd, stdout: stdout, stderr: stderr}
	cmd.Cancel = p.Kill

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "start %s", c.Program)
	}
	return p, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdout io.Reader
	stderr io.Reader
}

func (p *execProcess) Stdout() io.Reader { return p.stdout }
func (p *execProcess) Stderr() io.Reader { return p.stderr }

func (p *execProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

func (p *execProcess) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	err := unix.Kill(-p.cmd.Process.Pid, unix.SIGKILL)
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}
