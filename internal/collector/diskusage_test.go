package collector

import (
	"testing"

	"statreporter/internal/source"
)

const sampleDF = `Filesystem     Type  Size  Used Avail Use% Mounted on
/dev/nvme0n1p2 ext4  468G  402G   43G  91% /
/dev/nvme0n1p1 vfat  511M  6.1M  505M   2% /boot/efi
/dev/sdb1      ext4  916G  700G  170G  81% /media/My Disk
broken line
overlay        overlay  -     -     -     - /var/lib/docker/overlay2
`

func TestParseDiskUsage(t *testing.T) {
	entries := ParseDiskUsage(sampleDF)
	if len(entries) != 4 {
		t.Fatalf("len(entries) = %d, want 4", len(entries))
	}

	root := entries[0]
	if root.Source != "/dev/nvme0n1p2" || root.Target != "/" || root.Percent != "91%" {
		t.Errorf("root = %+v", root)
	}
	if root.Severity != SeverityCritical {
		t.Errorf("root severity = %q, want critical", root.Severity)
	}
	if entries[1].Severity != SeverityOK {
		t.Errorf("efi severity = %q, want ok", entries[1].Severity)
	}
	if entries[2].Target != "/media/My Disk" {
		t.Errorf("Target = %q, want %q", entries[2].Target, "/media/My Disk")
	}
	if entries[2].Severity != SeverityWarning {
		t.Errorf("media severity = %q, want warning", entries[2].Severity)
	}
	if entries[3].Severity != SeverityUnknown {
		t.Errorf("overlay severity = %q, want unknown", entries[3].Severity)
	}
}

func TestUsageSeverity_Boundaries(t *testing.T) {
	tests := map[string]Severity{
		"70%":  SeverityOK,
		"71%":  SeverityWarning,
		"90%":  SeverityWarning,
		"91%":  SeverityCritical,
		"100%": SeverityCritical,
		"-":    SeverityUnknown,
		"":     SeverityUnknown,
	}
	for in, want := range tests {
		if got := UsageSeverity(in); got != want {
			t.Errorf("UsageSeverity(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDiskUsageCollector_Collect(t *testing.T) {
	env, reader := newTestEnv(t)
	reader.set(env.Commands.DiskUsage, source.OK(sampleDF))

	info := collect[DiskUsageInfo](t, NewDiskUsageCollector(env))
	if got := len(info.Entries.Or(nil)); got != 4 {
		t.Errorf("len(entries) = %d, want 4", got)
	}
}

func TestDiskUsageCollector_CommandFailure(t *testing.T) {
	env, reader := newTestEnv(t)
	reader.set(env.Commands.DiskUsage, source.Fail[string](source.CommandFailed, "exit status 1"))

	info := collect[DiskUsageInfo](t, NewDiskUsageCollector(env))
	if info.Entries.Reason != source.CommandFailed {
		t.Errorf("Reason = %q, want command_failed", info.Entries.Reason)
	}
}

func TestDiskUsageCollector_HeaderOnly(t *testing.T) {
	env, reader := newTestEnv(t)
	reader.set(env.Commands.DiskUsage, source.OK("Filesystem Type Size Used Avail Use% Mounted on"))

	info := collect[DiskUsageInfo](t, NewDiskUsageCollector(env))
	entries, ok := info.Entries.Get()
	if !ok || len(entries) != 0 {
		t.Errorf("entries = %v, want an empty successful list", info.Entries)
	}
}
