package jobs

import (
	"fmt"
	"os/exec"
	"syscall"

	"github.com/shirou/gopsutil/v4/process"
)

// Launcher starts a detached process for a shell command and reports its PID.
type Launcher interface {
	Launch(command string) (pid int, err error)
}

// Handle inspects and terminates a process the registry tracks by PID. The
// indirection lets the controller check real OS state instead of trusting a
// stored status flag, and lets tests run without spawning anything.
type Handle interface {
	Alive() bool
	Terminate() error
}

// HandleFunc resolves a PID to a Handle.
type HandleFunc func(pid int) Handle

// shellLauncher runs the command through /bin/sh in its own session, so the
// job survives the launching process.
type shellLauncher struct{}

func (shellLauncher) Launch(command string) (int, error) {
	cmd := exec.Command("/bin/sh", "-c", command) // #nosec G204 - commands come from operator config
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("launch %q: %w", command, err)
	}
	pid := cmd.Process.Pid
	// Reap the child when it exits; its lifetime is otherwise decoupled.
	go func() { _ = cmd.Wait() }()
	return pid, nil
}

type psHandle struct {
	pid int32
}

func (h psHandle) Alive() bool {
	p, err := process.NewProcess(h.pid)
	if err != nil {
		return false
	}
	running, err := p.IsRunning()
	return err == nil && running
}

func (h psHandle) Terminate() error {
	p, err := process.NewProcess(h.pid)
	if err != nil {
		return fmt.Errorf("process %d: %w", h.pid, err)
	}
	if err := p.Terminate(); err != nil {
		return fmt.Errorf("terminate pid %d: %w", h.pid, err)
	}
	return nil
}

// OSHandle returns a Handle backed by the OS process table.
func OSHandle(pid int) Handle {
	return psHandle{pid: int32(pid)}
}
