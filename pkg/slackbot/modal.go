package slackbot

import (
	"math/rand/v2"

	"github.com/slack-go/slack"
)

// Identifiers shared between the modal views built here and the
// interactive payloads that come back when users act on them.
const (
	CallbackIDPicker      = "ooo-picker"
	CallbackIDRangePicker = "ooo-range-picker"

	BlockIDFromDate = "from-date-block"
	BlockIDToDate   = "to-date-block"
	BlockIDReason   = "reason-block"

	ActionIDFromDate     = "from-date"
	ActionIDToDate       = "to-date"
	ActionIDReason       = "reason"
	ActionIDMultipleDays = "multiple-days"
)

var reasonPlaceholders = []string{
	"Would like to get some snooziessss",
	"Bored mehh :(",
	"Vacayyyy-shun!",
	"Undergoing existential crisis",
	"Digital detox",
	"Burnt out",
	"Lazy days",
	"Secret mission",
}

// DatePickerModal builds the OOO date-picker modal. The single-day
// variant has one datepicker and a "Multiple days?" button; the
// multi-day variant has first/last day pickers. Both end with an
// optional free-text reason.
func DatePickerModal(fromDate, toDate string, multiDay bool, reason string) slack.ModalViewRequest {
	if toDate == "" {
		toDate = fromDate
	}

	var blocks []slack.Block
	if multiDay {
		blocks = append(blocks,
			datePickerInput(BlockIDFromDate, ActionIDFromDate, "First day:", "Select first day", fromDate),
			datePickerInput(BlockIDToDate, ActionIDToDate, "Last day:", "Select last day", toDate),
		)
	} else {
		blocks = append(blocks,
			datePickerInput(BlockIDFromDate, ActionIDFromDate, "On:", "Select day", fromDate),
			slack.NewActionBlock("multi-day-actions",
				slack.NewButtonBlockElement(ActionIDMultipleDays, "multiple-days",
					plainText("Multiple days?")),
			),
		)
	}

	reasonInput := slack.NewPlainTextInputBlockElement(
		plainText(reasonPlaceholders[rand.IntN(len(reasonPlaceholders))]), ActionIDReason)
	reasonInput.InitialValue = reason

	reasonBlock := slack.NewInputBlock(BlockIDReason, plainText("Reason:"), nil, reasonInput)
	reasonBlock.Optional = true
	blocks = append(blocks, reasonBlock)

	callbackID := CallbackIDPicker
	if multiDay {
		callbackID = CallbackIDRangePicker
	}

	return slack.ModalViewRequest{
		Type:       slack.VTModal,
		CallbackID: callbackID,
		Title:      plainText("Out of office"),
		Submit:     plainText("Submit"),
		Close:      plainText("Cancel"),
		Blocks:     slack.Blocks{BlockSet: blocks},
	}
}

// ResultModal shows the outcome of a modal submission in place of the
// date picker.
func ResultModal(text string) slack.ModalViewRequest {
	return slack.ModalViewRequest{
		Type:       slack.VTModal,
		CallbackID: "ooo-result",
		Title:      plainText("Out of office"),
		Close:      plainText("Done"),
		Blocks: slack.Blocks{
			BlockSet: []slack.Block{
				slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
			},
		},
	}
}

func datePickerInput(blockID, actionID, label, placeholder, initialDate string) *slack.InputBlock {
	dp := slack.NewDatePickerBlockElement(actionID)
	dp.InitialDate = initialDate
	dp.Placeholder = plainText(placeholder)
	return slack.NewInputBlock(blockID, plainText(label), nil, dp)
}

func plainText(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, text, true, false)
}
