package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummary(t *testing.T) {
	body := "<h1>Title</h1>\n<p>First   paragraph &amp; more.</p><pre>code()</pre><script>x()</script><p>Second</p>"

	assert.Equal(t, "Title First paragraph & more. Second", Summary(body, 200))
	assert.Equal(t, "Title First…", Summary(body, 14))
	assert.Equal(t, "", Summary(body, 0))
}

func TestSummaryPlainText(t *testing.T) {
	assert.Equal(t, "plain words here", Summary("plain\nwords here", 100))
	assert.Equal(t, "abcd…", Summary("abcdefgh", 4))
}
