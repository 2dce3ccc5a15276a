package core

import "testing"

func TestActivityResult_ModesAreExclusive(t *testing.T) {
	cases := []struct {
		name string
		res  ActivityResult
		mode ResultMode
	}{
		{"continue", Continue("next"), ModeContinue},
		{"continue with data", ContinueWithData("next", 1), ModeContinue},
		{"end", End("done"), ModeEnd},
		{"end with data", EndWithData("done", "payload"), ModeEnd},
		{"wait", WaitForInput("your name?"), ModeWaitForInput},
		{"wait with data", WaitForInputWithData("card", map[string]any{"a": 1}), ModeWaitForInput},
		{"sub topic", WaitForSubTopic("address", "resume", "collecting address"), ModeWaitForSubTopic},
		{"cancelled", Cancelled("stopped"), ModeCancelled},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.res.Mode() != tc.mode {
				t.Fatalf("mode: got %v want %v", tc.res.Mode(), tc.mode)
			}
			active := 0
			for _, flag := range []bool{
				tc.res.IsContinue(), tc.res.IsEnd(), tc.res.IsWaiting(),
				tc.res.IsWaitingForSubTopic(), tc.res.IsCancelled(),
			} {
				if flag {
					active++
				}
			}
			if active != 1 {
				t.Fatalf("expected exactly one active mode, got %d", active)
			}
		})
	}
}

func TestActivityResult_Fields(t *testing.T) {
	res := WaitForSubTopic("vehicle", map[string]string{"k": "v"}, "switching")
	if res.SubTopicName() != "vehicle" {
		t.Fatalf("SubTopicName: %q", res.SubTopicName())
	}
	if res.Message() != "switching" {
		t.Fatalf("Message: %q", res.Message())
	}
	rd, ok := res.ResumeData().(map[string]string)
	if !ok || rd["k"] != "v" {
		t.Fatalf("ResumeData round trip failed: %v", res.ResumeData())
	}

	cont := ContinueWithData("m", 7)
	if cont.Payload().(int) != 7 {
		t.Fatalf("Payload: %v", cont.Payload())
	}
}
