package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/markdave123-py/Chatlens/internal/core"
)

const (
	ocrTextHeader = "📄 **Extracted OCR Text:**\n\n"
	replyHeader   = "🤖 **AI Response:**\n\n"
	noReplyText   = "⚠️ No response generated."
	ocrErrorText  = "⚠️ OCR Error: "
)

const ocrPromptTemplate = `You are an AI assistant analyzing text extracted from an image.

Extracted OCR text:
"""%s"""

Now, answer the user's question based on this text:
%s
`

// BuildPrompt grounds the question in the OCR text when there is any.
func BuildPrompt(question, ocrText string) string {
	if ocrText == "" {
		return question
	}
	return fmt.Sprintf(ocrPromptTemplate, ocrText, question)
}

func ocrDisplayText(ocrText string) string {
	return ocrTextHeader + ocrText
}

func replyText(reply string) string {
	return replyHeader + strings.TrimSpace(reply)
}

// failureText turns a model error into the assistant notice shown in the transcript.
func failureText(err error) string {
	if errors.Is(err, core.ErrEmptyReply) {
		return replyHeader + noReplyText
	}

	detail := err.Error()
	var mf *core.ModelFailure
	if errors.As(err, &mf) {
		detail = mf.Err.Error()
	}
	return replyHeader + "⚠️ Error generating response: " + detail
}

func ocrFailureText(err error) string {
	detail := err.Error()
	var of *core.OCRFailure
	if errors.As(err, &of) {
		detail = of.Err.Error()
	}
	return ocrErrorText + detail
}
