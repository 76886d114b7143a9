package pdfdoc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender_ProducesPDF(t *testing.T) {
	b, err := Render(Document{
		Title:     "Purchase contract",
		Body:      "<p>Owner: Jane Roe</p><p>VIN: JT2JA82J0R0012345</p>",
		QRContent: "https://cartrack.example/track/abc",
		Footer:    "CarTrack",
	})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}

func TestRender_WithoutQR(t *testing.T) {
	b, err := Render(Document{Body: "plain"})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}

func TestPlainText(t *testing.T) {
	require.Equal(t, "Hello\nWorld & co", PlainText("<h1>Hello</h1><b>World</b> &amp; co"))
	require.Equal(t, "a\n\nb", PlainText("a<br><br><br><br>b"))
}
