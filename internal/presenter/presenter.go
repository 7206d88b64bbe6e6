package presenter

import (
	"fmt"
	"io"

	"github.com/jwalitptl/liver-report/internal/service/prediction"
	apperrors "github.com/jwalitptl/liver-report/pkg/errors"
)

// User-facing messages.
const (
	MsgMissingName    = "Please enter the patient's name."
	MsgInvalidInput   = "The form data could not be read."
	MsgSubmitFailed   = "Failed to process the prediction. Please try again."
	MsgNoResult       = "No prediction available! Please predict first."
	MsgDownloadFailed = "Failed to download the report. Please try again."
	MsgSaveFailed     = "The report could not be saved."
)

// Message maps a failed operation onto the text shown to the user.
func Message(op string, err error) string {
	switch apperrors.ReasonOf(err) {
	case "":
		return ""
	case apperrors.ReasonMissingName:
		return MsgMissingName
	case apperrors.ReasonInvalidInput:
		return MsgInvalidInput
	case apperrors.ReasonNoResult:
		return MsgNoResult
	case apperrors.ReasonSave:
		return MsgSaveFailed
	}
	if op == prediction.OpDownload {
		return MsgDownloadFailed
	}
	return MsgSubmitFailed
}

// Alert writes the user message for a failure to w, terminal style.
func Alert(w io.Writer, op string, err error) {
	if msg := Message(op, err); msg != "" {
		fmt.Fprintf(w, "! %s\n", msg)
	}
}
