package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobMemberRoundTrip(t *testing.T) {
	member := jobMember("turn.expire", 17)
	assert.Equal(t, "turn.expire:17", member)

	kind, id, err := parseMember(member)
	require.NoError(t, err)
	assert.Equal(t, "turn.expire", kind)
	assert.Equal(t, uint(17), id)
}

func TestParseMemberRejectsGarbage(t *testing.T) {
	for _, member := range []string{"", "turn.expire", ":5", "turn.expire:", "turn.expire:abc"} {
		_, _, err := parseMember(member)
		assert.Error(t, err, "member %q", member)
	}
}

func TestConnectionProfiles(t *testing.T) {
	interactive := InteractiveProfile()
	background := BackgroundProfile()

	// The request path fails fast; the consumer path outlasts outages.
	assert.Less(t, interactive.MaxRetries, background.MaxRetries)
	assert.Less(t, interactive.DialTimeout, background.DialTimeout)
	assert.LessOrEqual(t, interactive.MaxRetryBackoff, time.Second)
	assert.GreaterOrEqual(t, background.MaxRetryBackoff, 10*time.Second)
}

func TestProfileClientRejectsBadURL(t *testing.T) {
	_, err := InteractiveProfile().Client("not a url")
	assert.Error(t, err)

	client, err := BackgroundProfile().Client("redis://localhost:6379/0")
	require.NoError(t, err)
	opts := client.Options()
	assert.Equal(t, 20, opts.MaxRetries)
	assert.Equal(t, 10*time.Second, opts.DialTimeout)
	require.NoError(t, client.Close())
}
