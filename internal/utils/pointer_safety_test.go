package utils_test

import (
	"testing"

	"github.com/jrsteele09/go-booking-server/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	require.Equal(t, "", utils.Value[string](nil))
	require.Equal(t, "x", utils.Value(utils.Ptr("x")))
}

func TestPtrIfSet(t *testing.T) {
	require.Nil(t, utils.PtrIfSet(""))
	require.Nil(t, utils.PtrIfSet(0))
	require.Equal(t, "tok", *utils.PtrIfSet("tok"))
}
