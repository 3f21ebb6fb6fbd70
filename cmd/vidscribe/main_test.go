package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tbraun/vidscribe/internal/cli"
)

func TestShouldPrintUsageHint(t *testing.T) {
	t.Parallel()

	require.True(t, shouldPrintUsageHint(errors.New("unknown command \"bad\" for \"vidscribe\"")))
	require.True(t, shouldPrintUsageHint(errors.New("unknown flag: --oops")))
	require.True(t, shouldPrintUsageHint(errors.New("accepts 1 arg(s), received 0")))
	require.True(t, shouldPrintUsageHint(errors.New("unknown output format \"pdf\" (supported: txt, json, srt, vtt)")))
	require.False(t, shouldPrintUsageHint(errors.New("download model \"base\": context deadline exceeded")))
	require.False(t, shouldPrintUsageHint(nil))
}

func TestHelpHintTarget(t *testing.T) {
	t.Parallel()

	root := cli.NewRootCmd()
	require.Equal(t, "vidscribe", helpHintTarget(root, []string{"--badflag"}))
	require.Equal(t, "vidscribe", helpHintTarget(root, []string{"badcmd"}))
	require.Equal(t, "vidscribe transcribe", helpHintTarget(root, []string{"transcribe"}))
	require.Equal(t, "vidscribe batch", helpHintTarget(root, []string{"batch", "--language", "en"}))
}
