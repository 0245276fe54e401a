package goquery_test

import (
	"io"
	"strings"
	"testing"

	"github.com/fwojciec/transpress/goquery"
	"github.com/stretchr/testify/assert"
)

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}

func TestPlainText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Sony & Canon <new>", goquery.PlainText("Sony &amp; Canon &lt;new&gt;"))
	assert.Equal(t, "Bold title", goquery.PlainText("<b>Bold</b>   title"))
	assert.Equal(t, "plain", goquery.PlainText(" plain "))
}
