package dahua

import "testing"

func TestParseKVSimple(t *testing.T) {
	kv := ParseKV("key1=value1\nkey2=value2")
	if kv.Len() != 2 || kv.Get("key1") != "value1" || kv.Get("key2") != "value2" {
		t.Fatalf("parsed=%v", kv.Values)
	}
}

func TestParseKVKeepsVendorPrefixes(t *testing.T) {
	kv := ParseKV("table.MotionDetect[0].Enable=true\ntable.MotionDetect[0].Level=50")
	if got := kv.Get("table.MotionDetect[0].Enable"); got != "true" {
		t.Fatalf("Enable=%q", got)
	}
	if got := kv.Get("table.MotionDetect[0].Level"); got != "50" {
		t.Fatalf("Level=%q", got)
	}
	if kv.Len() != 2 {
		t.Fatalf("len=%d", kv.Len())
	}
}

func TestParseKVValueWithEquals(t *testing.T) {
	kv := ParseKV("key=value=with=equals")
	if got := kv.Get("key"); got != "value=with=equals" {
		t.Fatalf("got %q", got)
	}
}

func TestParseKVSkipsBlankAndBareLines(t *testing.T) {
	kv := ParseKV("\nOK\n\nkey1=value1\n")
	if kv.Len() != 1 || kv.Get("key1") != "value1" {
		t.Fatalf("parsed=%v", kv.Values)
	}
	if kv.Raw != "\nOK\n\nkey1=value1\n" {
		t.Fatalf("raw=%q", kv.Raw)
	}
}

func TestParseKVEmpty(t *testing.T) {
	if kv := ParseKV(""); kv.Len() != 0 {
		t.Fatalf("len=%d", kv.Len())
	}
}

func TestParseKVPreservesOrder(t *testing.T) {
	kv := ParseKV("b=2\na=1\nc=3")
	want := []string{"b", "a", "c"}
	for i, k := range want {
		if kv.Keys[i] != k {
			t.Fatalf("keys=%v want %v", kv.Keys, want)
		}
	}
}

func TestParseKVSystemInfo(t *testing.T) {
	kv := ParseKV("appAutoStart=true\ndeviceType=IPC-HDW5831R-ZE\nhardwareVersion=1.00\nprocessor=S3LM\nserialNumber=4X7C5A1ZAG21L3F\n")
	if kv.Get("deviceType") != "IPC-HDW5831R-ZE" {
		t.Fatalf("deviceType=%q", kv.Get("deviceType"))
	}
	if kv.Get("serialNumber") != "4X7C5A1ZAG21L3F" {
		t.Fatalf("serialNumber=%q", kv.Get("serialNumber"))
	}
	m := kv.Map()
	if m["hardwareVersion"] != "1.00" {
		t.Fatalf("map=%v", m)
	}
}
