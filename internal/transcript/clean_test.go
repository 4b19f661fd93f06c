package transcript

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanCollapsesWhitespace(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Hello there world", Clean("  hello \t there\n world  "))
}

func TestCleanEmptyInput(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", Clean(""))
	require.Equal(t, "", Clean("   \n\t "))
}

func TestCleanCapitalizesSentenceStarts(t *testing.T) {
	t.Parallel()

	require.Equal(t, "First point. Second point. Third.", Clean("first point. second point. third."))
	require.Equal(t, "Really? Yes! Fine.", Clean("really? yes! fine."))
}

func TestCleanLeavesAbbreviationsAlone(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Send it to them, e.g. by mail.", Clean("send it to them, e.g. by mail."))
}

func TestCleanCapitalizesPronounI(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Yes, I think I can.", Clean("yes, i think i can."))
	require.Equal(t, "Well, I'm not sure I'd agree.", Clean("well, i'm not sure i'd agree."))
}

func TestCleanHandlesCurlyApostrophes(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Sure, I’m on it.", Clean("sure, i’m on it."))
	require.Equal(t, "I’ve seen it. I’ll check.", Clean("i’ve seen it. i’ll check."))
}
