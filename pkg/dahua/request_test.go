package dahua

import "testing"

func TestRequestEncodeNoParams(t *testing.T) {
	if got := NewRequest("snapshot.cgi").Encode(); got != "snapshot.cgi" {
		t.Fatalf("got %q", got)
	}
}

func TestRequestEncodeOrdered(t *testing.T) {
	req := NewRequest("configManager.cgi").
		Param("action", "setConfig").
		Param("MotionDetect[0].Enable", "true").
		Param("MotionDetect[0].DetectVersion", "V3.0")
	want := "configManager.cgi?action=setConfig&MotionDetect[0].Enable=true&MotionDetect[0].DetectVersion=V3.0"
	if got := req.Encode(); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRequestEncodeEscapesValues(t *testing.T) {
	req := NewRequest("log.cgi").
		Param("action", "startFind").
		Param("condition.StartTime", "2024-01-01 00:00:00")
	want := "log.cgi?action=startFind&condition.StartTime=2024-01-01+00%3A00%3A00"
	if got := req.Encode(); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRequestEncodeKeepsBrackets(t *testing.T) {
	req := NewRequest("log.cgi").Param("condition.Types", "[Alarm]")
	if got := req.Encode(); got != "log.cgi?condition.Types=[Alarm]" {
		t.Fatalf("got %q", got)
	}
}
