package main

import (
	"errors"
	"testing"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/Adithya-charan/docuExtract/pkg/llm"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestReplyLine(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	tests := []struct {
		name  string
		reply string
		err   error
		want  string
	}{
		{"answer", "Clause 4 covers it.", nil, "Assistant: Clause 4 covers it."},
		{"transport failure keeps fallback", llm.FallbackReply, models.NewTransportError("chat request failed", errors.New("dial tcp")), "Assistant: " + llm.FallbackReply},
		{"no session shows the error", "", models.NewConfigurationError("no chat model configured", nil), "Error: [configuration] no chat model configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, replyLine(tt.reply, tt.err))
		})
	}
}
