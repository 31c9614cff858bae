package collector

import (
	"testing"

	"statreporter/internal/source"
)

func addSupply(t *testing.T, env *Env, name string, attrs map[string]string) {
	t.Helper()
	mkdir(t, env.Sys("class", "power_supply", name))
	for file, value := range attrs {
		writeFile(t, env.Sys("class", "power_supply", name, file), value+"\n")
	}
}

func TestPowerCollector_BatteryAndAdapter(t *testing.T) {
	env, _ := newTestEnv(t)
	addSupply(t, env, "BAT0", map[string]string{
		"status":      "Charging",
		"capacity":    "87",
		"charge_now":  "4000000",
		"charge_full": "4600000",
		"present":     "1",
	})
	addSupply(t, env, "AC", map[string]string{"online": "1"})
	addSupply(t, env, "hidpp_battery_0", map[string]string{"capacity": "50"})

	info := collect[PowerInfo](t, NewPowerCollector(env))
	supplies, ok := info.Supplies.Get()
	if !ok {
		t.Fatalf("Supplies failed: %v", info.Supplies.Error())
	}
	if len(supplies.Batteries) != 1 || len(supplies.Adapters) != 1 {
		t.Fatalf("supplies = %+v", supplies)
	}

	bat := supplies.Batteries[0]
	if bat.Status.Or("") != BatteryCharging {
		t.Errorf("Status = %v", bat.Status)
	}
	if bat.Percent.Or(-1) != 87 {
		t.Errorf("Percent = %v", bat.Percent)
	}
	if bat.ChargeNowMAh.Or(0) != 4000 {
		t.Errorf("ChargeNowMAh = %v", bat.ChargeNowMAh)
	}
	if !supplies.Adapters[0].Online.Or(false) {
		t.Error("expected AC online")
	}
}

func TestPowerCollector_BatteryEdgeCases(t *testing.T) {
	env, _ := newTestEnv(t)
	addSupply(t, env, "BAT0", map[string]string{"status": "Not charging", "capacity": "140"})
	addSupply(t, env, "BAT1", map[string]string{"status": "Unknown", "present": "0"})

	info := collect[PowerInfo](t, NewPowerCollector(env))
	batteries := info.Supplies.Or(PowerSupplies{}).Batteries
	if len(batteries) != 2 {
		t.Fatalf("len(batteries) = %d, want 2", len(batteries))
	}

	if batteries[0].Status.Or("") != BatteryUnknown {
		t.Errorf("BAT0 status = %v, want unknown", batteries[0].Status)
	}
	if batteries[0].Percent.Reason != source.MalformedValue {
		t.Errorf("BAT0 percent reason = %q, want malformed_value", batteries[0].Percent.Reason)
	}
	if batteries[0].ChargeNowMAh.Reason != source.SourceNotFound {
		t.Errorf("BAT0 charge_now reason = %q", batteries[0].ChargeNowMAh.Reason)
	}
	if batteries[1].Status.Or("") != BatteryNotPresent {
		t.Errorf("BAT1 status = %v, want not-present", batteries[1].Status)
	}
}

func TestPowerCollector_NoSupply(t *testing.T) {
	env, _ := newTestEnv(t)

	info := collect[PowerInfo](t, NewPowerCollector(env))
	if info.Supplies.Reason != source.SourceNotFound {
		t.Errorf("Reason = %q, want source_not_found", info.Supplies.Reason)
	}
	if info.Supplies.Detail != "no power source detected" {
		t.Errorf("Detail = %q", info.Supplies.Detail)
	}
}
