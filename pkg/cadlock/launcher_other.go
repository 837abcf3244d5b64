//go:build !windows

package cadlock

// Off Windows there is no shell association API with a waitable
// handle. The launcher runs the configured viewer command, or falls
// back to xdg-open. With xdg-open the handle is the opener itself,
// which usually exits right away, so sessions are best effort here.

type execLauncher struct {
	viewerCommand string
}

func newPlatformLauncher(viewerCommand string) ViewerLauncher {
	return &execLauncher{viewerCommand: viewerCommand}
}

func (l *execLauncher) Launch(path string) (ViewerProcess, error) {
	command := l.viewerCommand
	if command == "" {
		command = "xdg-open"
	}
	return launchCommand(command, path)
}
