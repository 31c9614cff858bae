package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"golang.org/x/sys/unix"

	"statreporter/internal/source"
)

func fakeUname(sysname, nodename, release string) func(*unix.Utsname) error {
	return func(u *unix.Utsname) error {
		copy(u.Sysname[:], sysname)
		copy(u.Nodename[:], nodename)
		copy(u.Release[:], release)
		return nil
	}
}

func TestGeneralCollector_Collect(t *testing.T) {
	env, _ := newTestEnv(t)
	writeFile(t, env.Proc("uptime"), "3725.50 14000.12\n")

	c := NewGeneralCollector(env)
	c.hostInfo = func(context.Context) (*host.InfoStat, error) {
		return &host.InfoStat{Hostname: "atelier"}, nil
	}
	c.uname = fakeUname("Linux", "ignored", "6.8.0-45-generic")

	info := collect[GeneralInfo](t, c)

	if got := info.Hostname.Or(""); got != "atelier" {
		t.Errorf("Hostname = %q, want atelier", got)
	}
	if got := info.Kernel.Or(""); got != "Linux 6.8.0-45-generic" {
		t.Errorf("Kernel = %q", got)
	}
	if got := info.Uptime.Or(0); got != 3725*time.Second+500*time.Millisecond {
		t.Errorf("Uptime = %v", got)
	}
	if info.UptimeText != "1h 2min 5s" {
		t.Errorf("UptimeText = %q, want %q", info.UptimeText, "1h 2min 5s")
	}
}

func TestGeneralCollector_HostnameFallsBackToUname(t *testing.T) {
	env, _ := newTestEnv(t)
	c := NewGeneralCollector(env)
	c.hostInfo = func(context.Context) (*host.InfoStat, error) {
		return nil, errors.New("boom")
	}
	c.uname = fakeUname("Linux", "nodename-host", "6.1")

	info := collect[GeneralInfo](t, c)
	if got := info.Hostname.Or(""); got != "nodename-host" {
		t.Errorf("Hostname = %q, want nodename-host", got)
	}
}

func TestGeneralCollector_MissingUptime(t *testing.T) {
	env, _ := newTestEnv(t)
	c := NewGeneralCollector(env)
	c.uname = fakeUname("Linux", "h", "6.1")

	info := collect[GeneralInfo](t, c)
	if info.Uptime.Reason != source.SourceNotFound {
		t.Errorf("Uptime.Reason = %q, want source_not_found", info.Uptime.Reason)
	}
	if info.UptimeText != "uptime unavailable (source_not_found)" {
		t.Errorf("UptimeText = %q", info.UptimeText)
	}
}

func TestGeneralCollector_MalformedUptime(t *testing.T) {
	env, _ := newTestEnv(t)
	writeFile(t, env.Proc("uptime"), "abc def")
	c := NewGeneralCollector(env)
	c.uname = fakeUname("Linux", "h", "6.1")

	info := collect[GeneralInfo](t, c)
	if info.Uptime.Reason != source.MalformedValue {
		t.Errorf("Uptime.Reason = %q, want malformed_value", info.Uptime.Reason)
	}
}

func TestGeneralCollector_UnameFailure(t *testing.T) {
	env, _ := newTestEnv(t)
	c := NewGeneralCollector(env)
	c.hostInfo = func(context.Context) (*host.InfoStat, error) {
		return &host.InfoStat{Hostname: "h"}, nil
	}
	c.uname = func(*unix.Utsname) error { return unix.EPERM }

	info := collect[GeneralInfo](t, c)
	if info.Kernel.Reason != source.PermissionDenied {
		t.Errorf("Kernel.Reason = %q, want permission_denied", info.Kernel.Reason)
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0h 0min 0s"},
		{59 * time.Second, "0h 0min 59s"},
		{3725 * time.Second, "1h 2min 5s"},
		{50 * time.Hour, "50h 0min 0s"},
	}
	for _, tt := range tests {
		if got := FormatUptime(tt.in); got != tt.want {
			t.Errorf("FormatUptime(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGeneralFallback(t *testing.T) {
	info := GeneralFallback(source.Disabled, "disabled in configuration")
	if info.Hostname.Ok() || info.Kernel.Ok() || info.Uptime.Ok() {
		t.Fatal("expected every field to fail")
	}
	if info.Hostname.Reason != source.Disabled {
		t.Errorf("Reason = %q", info.Hostname.Reason)
	}
}
