package productivity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/focusnest/internal/identity"
)

func TestDecodeBoardMissingKeys(t *testing.T) {
	b, issues := DecodeBoard(nil)
	assert.Empty(t, issues)
	assert.Equal(t, NewBoard(), b)

	b, issues = DecodeBoard(identity.Attributes{KeyPlannerEntries: json.RawMessage(`null`)})
	assert.Empty(t, issues)
	assert.NotNil(t, b.Tasks)
}

func TestDecodeBoardDropsMalformed(t *testing.T) {
	attrs := identity.Attributes{
		KeyPlannerEntries: json.RawMessage(`[
			{"_id":"t1","pEntryTime":"9:30","pEntryTask":" ok ","pEntryStatus":"pending"},
			{"_id":"","pEntryTask":"no id","pEntryStatus":"pending"},
			{"_id":"t1","pEntryTask":"dupe","pEntryStatus":"pending"},
			{"_id":"t3","pEntryTask":"bad status","pEntryStatus":"done"},
			{"_id":"t4","pEntryTask":"   ","pEntryStatus":"pending"},
			{"_id":"t5","pEntryTask":"no status"},
			"not an object"
		]`),
		KeyEmotionalCheckins: json.RawMessage(`[
			{"_id":"c1","checkinMood":"calm","checkinNotes":"","checkinDate":"2025-03-14T10:30:00Z"},
			{"_id":"c2","checkinMood":"bored","checkinDate":"2025-03-14T10:30:00Z"}
		]`),
		KeyBrainDumpEntries: json.RawMessage(`{"oops":true}`),
		KeyFocusSessions: json.RawMessage(`[
			{"_id":"s1","duration":25,"completedAt":"2025-03-14T10:30:00Z"},
			{"_id":"s2","completedAt":"2025-03-14T11:00:00Z"},
			{"_id":"s3","duration":25}
		]`),
	}

	b, issues := DecodeBoard(attrs)
	require.Len(t, b.Tasks, 2)
	assert.Equal(t, "09:30", b.Tasks[0].Time)
	assert.Equal(t, "ok", b.Tasks[0].Task)
	assert.Equal(t, StatusPending, b.Tasks[1].Status)

	require.Len(t, b.Checkins, 1)
	assert.Equal(t, MoodCalm, b.Checkins[0].Mood)

	assert.Empty(t, b.BrainDump)
	assert.NotNil(t, b.BrainDump)

	require.Len(t, b.Sessions, 2)
	assert.Equal(t, FocusMinutes, b.Sessions[1].Duration)

	// 5 tasks, 1 checkin, 1 brain dump document, 1 session
	assert.Len(t, issues, 8)
}

func TestDecodeBoardDefaultsUnreadableTaskTime(t *testing.T) {
	attrs := identity.Attributes{
		KeyPlannerEntries: json.RawMessage(`[
			{"_id":"a","pEntryTime":"9:00 AM","pEntryTask":"call doctor","pEntryStatus":"pending"},
			{"_id":"b","pEntryTime":"25:99","pEntryTask":"stretch","pEntryStatus":"completed"},
			{"_id":"c","pEntryTask":"no time","pEntryStatus":"pending"}
		]`),
	}

	b, issues := DecodeBoard(attrs)
	require.Len(t, b.Tasks, 3)
	assert.Equal(t, DefaultTaskTime, b.Tasks[0].Time)
	assert.Equal(t, "call doctor", b.Tasks[0].Task)
	assert.Equal(t, DefaultTaskTime, b.Tasks[1].Time)
	assert.Equal(t, StatusCompleted, b.Tasks[1].Status)
	assert.Equal(t, DefaultTaskTime, b.Tasks[2].Time)

	require.Len(t, issues, 2)
	for _, issue := range issues {
		assert.ErrorIs(t, issue, ErrInvalidTime)
	}
}

func TestEncodeBoard(t *testing.T) {
	b, err := NewBoard().AddTask("t1", "", "x", t0)
	require.NoError(t, err)

	all, err := EncodeBoard(b)
	require.NoError(t, err)
	assert.ElementsMatch(t, BoardKeys, all.Keys())
	assert.JSONEq(t, `[]`, string(all[KeyFocusSessions]))

	one, err := EncodeBoard(Board{}, KeyBrainDumpEntries)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(one[KeyBrainDumpEntries]))

	_, err = EncodeBoard(b, "bogus")
	assert.Error(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(all[KeyPlannerEntries], &raw))
	assert.Equal(t, "x", raw[0]["pEntryTask"])
	assert.Equal(t, "pending", raw[0]["pEntryStatus"])
	assert.Equal(t, "t1", raw[0]["_id"])
}
