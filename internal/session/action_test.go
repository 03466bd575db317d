package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionRoundTrip(t *testing.T) {
	actions := []Action{
		Adjust{Field: FieldWeight, Delta: -2.5},
		Adjust{Field: FieldMinutes, Delta: 0.01},
		Adjust{Field: FieldSets, Delta: 1},
		Select{Scope: ScopeMuscle, Index: 3},
		Select{Scope: ScopeSets, Index: 6},
		Confirm{},
		Back{},
		Finish{},
		Noop{},
	}
	for _, a := range actions {
		t.Run(a.Token(), func(t *testing.T) {
			parsed, err := ParseAction(a.Token())
			require.NoError(t, err)
			assert.Equal(t, a, parsed)
		})
	}
}

func TestParseActionTokens(t *testing.T) {
	a, err := ParseAction("adj:w:+2.5")
	require.NoError(t, err)
	assert.Equal(t, Adjust{Field: FieldWeight, Delta: 2.5}, a)

	a, err = ParseAction(" ok ")
	require.NoError(t, err)
	assert.Equal(t, Confirm{}, a)
}

func TestParseActionRejectsGarbage(t *testing.T) {
	for _, token := range []string{
		"",
		"wadj:-2.5",
		"adj:w",
		"adj:xx:1",
		"adj:w:abc",
		"adj:w:NaN",
		"adj:w:Inf",
		"sel:grp:-1",
		"sel:grp:x",
		"sel:nope:1",
		"jump:a:b",
	} {
		_, err := ParseAction(token)
		assert.True(t, errors.Is(err, ErrInvalidToken), "token %q", token)
	}
}

func TestTextHasNoToken(t *testing.T) {
	assert.Equal(t, "", Text{Raw: "72.4"}.Token())
}
