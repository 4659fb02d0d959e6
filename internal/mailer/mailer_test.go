package mailer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderStatusUpdate(t *testing.T) {
	html, err := RenderStatusUpdate("Rahim", "64f1c0ffee0ddba11ad0b001", "shipped")
	require.NoError(t, err)
	require.Contains(t, html, "Hello Rahim,")
	require.Contains(t, html, "Order ID: 64f1c0ffee0ddba11ad0b001")
	require.Contains(t, html, "<strong>shipped</strong>")
	require.Contains(t, html, "FineMed Team")
}

func TestRenderStatusUpdateEscapesName(t *testing.T) {
	html, err := RenderStatusUpdate("<script>x</script>", "id", "pending")
	require.NoError(t, err)
	require.NotContains(t, html, "<script>")
}
