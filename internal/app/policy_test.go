package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Tandem/internal/core/coretest"
)

func TestSimplePolicy(t *testing.T) {
	p := SimplePolicy{}
	c := coretest.NewConn("c")

	require.Equal(t, DropFrame, p.OnBackPressure(c, "userTyping"))
	require.Equal(t, DropFrame, p.OnBackPressure(c, "updateOnlineUsers"))
	require.Equal(t, KickMember, p.OnBackPressure(c, "receiveMessage"))
	require.Equal(t, KickMember, p.OnBackPressure(c, "offer"))
}
