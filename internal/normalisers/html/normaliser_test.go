package html

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".html", ".htm", ".xhtml"}, New().Extensions())
}

func TestNormalise_Success(t *testing.T) {
	page := `<html><head><title> My &amp; Page </title><style>p { color: red }</style></head>` +
		`<body><h1>Heading</h1><p>First para with &lt;tag&gt;.</p>` +
		`<script>var x = 1;</script><ul><li>one</li><li>two</li></ul></body></html>`

	result, err := New().Normalise("page.html", []byte(page))
	require.NoError(t, err)

	assert.Equal(t, "My & Page", result.Title)
	assert.Equal(t, "Heading\nFirst para with <tag>.\none\ntwo", result.Content)
	assert.Equal(t, ContentType, result.ContentType)
}

func TestNormalise_InlineElementsStayOnLine(t *testing.T) {
	result, err := New().Normalise("p.html", []byte("<p>Hello   <b>bold</b>\n  <i>world</i></p>"))
	require.NoError(t, err)

	assert.Equal(t, "Hello bold world", result.Content)
	assert.Empty(t, result.Title)
}

func TestNormalise_BreaksSplitLines(t *testing.T) {
	result, err := New().Normalise("p.html", []byte("<div>first<br>second</div><div>third</div>"))
	require.NoError(t, err)

	assert.Equal(t, "first\nsecond\nthird", result.Content)
}

func TestNormalise_Fragment(t *testing.T) {
	result, err := New().Normalise("frag.html", []byte("plain <em>text</em> only"))
	require.NoError(t, err)

	assert.Equal(t, "plain text only", result.Content)
}

func TestNormalise_DropsInvisibleContent(t *testing.T) {
	page := "<body><noscript>enable js</noscript><p>visible</p><svg><text>icon</text></svg></body>"

	result, err := New().Normalise("p.html", []byte(page))
	require.NoError(t, err)

	assert.Equal(t, "visible", result.Content)
}
