package workflow

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
)

// Dialer places a call on the device. The app never routes calls itself.
type Dialer interface {
	Dial(ctx context.Context, phone string) error
}

// TelURL builds a tel: link, keeping a leading + and the digits.
func TelURL(phone string) string {
	var b strings.Builder
	b.WriteString("tel:")
	for i, r := range strings.TrimSpace(phone) {
		if (r >= '0' && r <= '9') || (i == 0 && r == '+') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PrintDialer writes the tel: link for the user to follow.
type PrintDialer struct {
	W io.Writer
}

func (p PrintDialer) Dial(_ context.Context, phone string) error {
	if TelURL(phone) == "tel:" {
		return fmt.Errorf("no dialable digits in %q", phone)
	}
	_, err := fmt.Fprintln(p.W, TelURL(phone))
	return err
}

// CommandDialer hands the tel: link to the platform URL opener.
type CommandDialer struct {
	// Opener overrides the platform default, e.g. "xdg-open".
	Opener []string
}

func defaultOpener() ([]string, error) {
	switch runtime.GOOS {
	case "darwin":
		return []string{"open"}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return []string{"xdg-open"}, nil
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler"}, nil
	default:
		return nil, fmt.Errorf("no URL opener for %s", runtime.GOOS)
	}
}

func (d CommandDialer) Dial(ctx context.Context, phone string) error {
	link := TelURL(phone)
	if link == "tel:" {
		return fmt.Errorf("no dialable digits in %q", phone)
	}
	argv := d.Opener
	if len(argv) == 0 {
		var err error
		if argv, err = defaultOpener(); err != nil {
			return err
		}
	}
	args := append(append([]string{}, argv[1:]...), link)
	cmd := exec.CommandContext(ctx, argv[0], args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", link, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
