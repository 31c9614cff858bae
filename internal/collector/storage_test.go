package collector

import (
	"testing"

	"statreporter/internal/source"
)

func TestStorageCollector_Collect(t *testing.T) {
	env, _ := newTestEnv(t)
	writeFile(t, env.Sys("block", "sda", "size"), "976773168")
	writeFile(t, env.Sys("block", "sda", "device", "model"), "WDC WD5000AAKX")
	writeFile(t, env.Sys("block", "sda", "queue", "rotational"), "1")
	writeFile(t, env.Sys("block", "nvme0n1", "size"), "1000215216")
	writeFile(t, env.Sys("block", "nvme0n1", "device", "model"), "Samsung SSD 980")
	writeFile(t, env.Sys("block", "nvme0n1", "queue", "rotational"), "0")
	writeFile(t, env.Sys("block", "mmcblk0", "size"), "62333952")
	writeFile(t, env.Sys("block", "mmcblk0", "device", "name"), "SC64G")
	mkdir(t, env.Sys("block", "sda1"))
	mkdir(t, env.Sys("block", "loop0"))
	mkdir(t, env.Sys("block", "nvme0n1p1"))

	info := collect[StorageInfo](t, NewStorageCollector(env))
	devices, ok := info.Devices.Get()
	if !ok {
		t.Fatalf("Devices failed: %v", info.Devices.Error())
	}
	if len(devices) != 3 {
		t.Fatalf("len(devices) = %d, want 3: %+v", len(devices), devices)
	}

	byName := make(map[string]BlockDevice)
	for _, d := range devices {
		byName[d.Name] = d
	}

	sda := byName["sda"]
	if sda.SizeGB.Or(0) != 500.1 {
		t.Errorf("sda SizeGB = %v, want 500.1", sda.SizeGB)
	}
	if sda.Kind() != "HDD" {
		t.Errorf("sda Kind = %q, want HDD", sda.Kind())
	}
	if byName["nvme0n1"].Kind() != "SSD/NVMe" {
		t.Errorf("nvme Kind = %q", byName["nvme0n1"].Kind())
	}

	mmc := byName["mmcblk0"]
	if mmc.Model.Or("") != "SC64G" {
		t.Errorf("mmc Model = %v, want SC64G", mmc.Model)
	}
	if mmc.Kind() != "unknown" {
		t.Errorf("mmc Kind = %q, want unknown", mmc.Kind())
	}
}

func TestStorageCollector_MissingBlockDir(t *testing.T) {
	env, _ := newTestEnv(t)

	info := collect[StorageInfo](t, NewStorageCollector(env))
	if info.Devices.Reason != source.SourceNotFound {
		t.Errorf("Reason = %q, want source_not_found", info.Devices.Reason)
	}
}

func TestStorageCollector_NoWholeDisk(t *testing.T) {
	env, _ := newTestEnv(t)
	mkdir(t, env.Sys("block", "loop0"))
	mkdir(t, env.Sys("block", "sda1"))

	info := collect[StorageInfo](t, NewStorageCollector(env))
	if info.Devices.Ok() {
		t.Fatalf("expected a failed device list, got %+v", info.Devices.Value)
	}
	if info.Devices.Reason != source.SourceNotFound {
		t.Errorf("Reason = %q, want source_not_found", info.Devices.Reason)
	}
}
