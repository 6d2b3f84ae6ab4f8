package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanComment(t *testing.T) {
	assert.Equal(t, "Line one.\n\n@since 2", cleanComment("/**\n * Line one.\n *\n * @since 2\n */"))
	assert.Equal(t, "hello\nworld", cleanComment("// hello\n// world"))
	assert.Equal(t, "Summary.\n\nDetail.", cleanComment(`"""Summary.

    Detail.
    """`))
}

func TestParseJavadoc(t *testing.T) {
	doc := parseDoc("Computes things.\n\n@param x the input\n  continued\n@return the result\n@throws IOException when broken\n@since 1.4\n@see Other\n@deprecated use compute2")

	assert.Equal(t, "Computes things.", doc.Description)
	assert.Equal(t, []DocParam{{Name: "x", Description: "the input continued"}}, doc.Params)
	assert.Equal(t, "the result", doc.Returns)
	assert.Equal(t, []string{"IOException"}, doc.Throws)
	assert.Equal(t, "1.4", doc.Since)
	assert.Equal(t, []string{"Other"}, doc.See)
	assert.True(t, doc.Deprecated)
	assert.Equal(t, "use compute2", doc.DeprecationMessage)
}

func TestParseJSDoc(t *testing.T) {
	doc := parseDoc("Loads it.\n@param {string} [name] - who\n@returns {Promise<void>} nothing\n@throws {TypeError} on bad input")

	assert.Equal(t, []DocParam{{Name: "name", Description: "who"}}, doc.Params)
	assert.Equal(t, "nothing", doc.Returns)
	assert.Equal(t, []string{"TypeError"}, doc.Throws)
}

func TestParseGoogleDocstring(t *testing.T) {
	doc := parseDoc("Fetch rows.\n\nArgs:\n    table (str): where to read.\n    limit: how many.\n\nRaises:\n    KeyError: missing table.\n\nReturns:\n    The rows.")

	assert.Equal(t, "Fetch rows.", doc.Description)
	assert.Equal(t, []DocParam{
		{Name: "table", Description: "where to read."},
		{Name: "limit", Description: "how many."},
	}, doc.Params)
	assert.Equal(t, []string{"KeyError"}, doc.Throws)
	assert.Equal(t, "The rows.", doc.Returns)
}

func TestParseNumpyDocstring(t *testing.T) {
	doc := parseDoc("Scale values.\n\nParameters\n----------\nfactor : float\n    multiplier\n\nReturns\n-------\narray")

	assert.Equal(t, "Scale values.", doc.Description)
	assert.Len(t, doc.Params, 1)
	assert.Equal(t, "factor", doc.Params[0].Name)
}

func TestParseSphinxAndDirectives(t *testing.T) {
	doc := parseDoc("Send it.\n\n:param str host: target host\n:raises ValueError: bad host\n:returns: status\n.. versionadded:: 3.1\n.. deprecated:: 4.0 use send2\n.. seealso:: send2")

	assert.Equal(t, []DocParam{{Name: "host", Description: "target host"}}, doc.Params)
	assert.Equal(t, []string{"ValueError"}, doc.Throws)
	assert.Equal(t, "status", doc.Returns)
	assert.Equal(t, "3.1", doc.Since)
	assert.True(t, doc.Deprecated)
	assert.Equal(t, "use send2", doc.DeprecationMessage)
	assert.Equal(t, []string{"send2"}, doc.See)
}

func TestParseDocKeepsParagraphs(t *testing.T) {
	doc := parseDoc("First.\nStill first.\n\n\nSecond.")
	assert.Equal(t, "First.\nStill first.\n\nSecond.", doc.Description)
}
