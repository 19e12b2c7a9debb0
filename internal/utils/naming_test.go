package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowerFirst(t *testing.T) {
	tests := map[string]string{
		"":               "",
		"x":              "x",
		"X":              "x",
		"Foo":            "foo",
		"ImageAddress":   "imageAddress",
		"ID":             "iD",
		"alreadyLower":   "alreadyLower",
		"Ärger":          "ärger",
		"TriggerEvent":   "triggerEvent",
		"Delegate":       "delegate",
		"_Private":       "_Private",
		"ConnectionList": "connectionList",
	}

	for input, expected := range tests {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, expected, LowerFirst(input))
		})
	}
}

func TestEscaper_ParamName(t *testing.T) {
	e := NewEscaper("", "delegate")

	assert.Equal(t, "foo", e.ParamName("Foo"))
	assert.Equal(t, "@delegate", e.ParamName("Delegate"))
	// 只有小写化后命中保留字才转义
	assert.Equal(t, "delegateId", e.ParamName("DelegateId"))
	assert.Equal(t, "@delegate", e.ParamName("delegate"))
}

func TestEscaper_CustomPrefixAndList(t *testing.T) {
	e := NewEscaper("_", "event", "  ", "class")

	assert.Equal(t, "_event", e.ParamName("Event"))
	assert.Equal(t, "_class", e.ParamName("Class"))
	assert.Equal(t, "name", e.ParamName("Name"))
	assert.Equal(t, []string{"class", "event"}, e.Reserved())
}

func TestEscaper_Nil(t *testing.T) {
	var e *Escaper
	assert.False(t, e.IsReserved("delegate"))
	assert.Equal(t, "delegate", e.Escape("delegate"))
	assert.Nil(t, e.Reserved())
}

func TestEscaper_CSharpKeywords(t *testing.T) {
	e := NewEscaper(DefaultEscapePrefix, CSharpKeywords...)

	for _, kw := range []string{"class", "event", "string", "delegate", "params"} {
		assert.True(t, e.IsReserved(kw), kw)
	}
	assert.Equal(t, "@event", e.ParamName("Event"))
	assert.Equal(t, "@object", e.ParamName("Object"))
	assert.Equal(t, "value", e.ParamName("Value"))
}
