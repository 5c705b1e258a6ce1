package slackbot

import (
	"testing"

	"github.com/slack-go/slack"
)

func TestDatePickerModalSingleDay(t *testing.T) {
	view := DatePickerModal("2024-03-10", "", false, "")

	if view.CallbackID != CallbackIDPicker {
		t.Errorf("callback ID = %q, want %q", view.CallbackID, CallbackIDPicker)
	}

	blocks := view.Blocks.BlockSet
	if len(blocks) != 3 {
		t.Fatalf("block count = %d, want 3", len(blocks))
	}

	input, ok := blocks[0].(*slack.InputBlock)
	if !ok {
		t.Fatalf("first block is %T, want *slack.InputBlock", blocks[0])
	}
	dp, ok := input.Element.(*slack.DatePickerBlockElement)
	if !ok {
		t.Fatalf("first element is %T, want *slack.DatePickerBlockElement", input.Element)
	}
	if dp.InitialDate != "2024-03-10" {
		t.Errorf("initial date = %q, want 2024-03-10", dp.InitialDate)
	}

	if _, ok := blocks[1].(*slack.ActionBlock); !ok {
		t.Errorf("second block is %T, want the multiple-days *slack.ActionBlock", blocks[1])
	}

	reason, ok := blocks[2].(*slack.InputBlock)
	if !ok {
		t.Fatalf("third block is %T, want *slack.InputBlock", blocks[2])
	}
	if !reason.Optional {
		t.Error("reason input must be optional")
	}
}

func TestDatePickerModalMultiDay(t *testing.T) {
	view := DatePickerModal("2024-03-10", "2024-03-12", true, "vacation")

	if view.CallbackID != CallbackIDRangePicker {
		t.Errorf("callback ID = %q, want %q", view.CallbackID, CallbackIDRangePicker)
	}

	blocks := view.Blocks.BlockSet
	if len(blocks) != 3 {
		t.Fatalf("block count = %d, want 3", len(blocks))
	}

	to := blocks[1].(*slack.InputBlock)
	if to.BlockID != BlockIDToDate {
		t.Errorf("second block ID = %q, want %q", to.BlockID, BlockIDToDate)
	}
	if d := to.Element.(*slack.DatePickerBlockElement).InitialDate; d != "2024-03-12" {
		t.Errorf("last-day initial date = %q, want 2024-03-12", d)
	}

	reason := blocks[2].(*slack.InputBlock)
	if v := reason.Element.(*slack.PlainTextInputBlockElement).InitialValue; v != "vacation" {
		t.Errorf("reason initial value = %q, want \"vacation\"", v)
	}
}

func TestDatePickerModalCarriesFromDateToRange(t *testing.T) {
	// Toggling to multi-day with no last day picked yet defaults it to
	// the first day.
	view := DatePickerModal("2024-03-10", "", true, "")
	to := view.Blocks.BlockSet[1].(*slack.InputBlock)
	if d := to.Element.(*slack.DatePickerBlockElement).InitialDate; d != "2024-03-10" {
		t.Errorf("last-day initial date = %q, want 2024-03-10", d)
	}
}
