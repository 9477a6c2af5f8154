package policy

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyJSONRoundTrip(t *testing.T) {
	raw := `{
		"schedule":{"weekday":{"allowed_from":"07:00","allowed_until":"19:30"},"custom":[]},
		"time_limits":{
			"daily":{"weekday":60,"weekend":null},
			"by_category":[{"category":"educational","daily_minutes":null},{"category":"games"}],
			"by_app":[{"app_name":"TikTok","daily_minutes":null},{"app_name":"Minecraft"}]
		},
		"spending":{"monthly_budget":null},
		"status":{"paused":true,"paused_until":"2026-02-06T18:00:00Z","locked_reason":null},
		"overrides":{
			"bonus_time":{"minutes":30,"granted_at":"2026-02-06T10:00:00Z","expires_at":"2026-02-06T22:00:00Z"},
			"temporary_rules":[{"type":"unblock_app","date":"2026-02-07","app_name":"Roblox","hours":[16,17]}]
		},
		"extensions":{"acme":{"quiet_mode":true,"nested":{"a":[1,2]}}}
	}`

	p := decodePolicy(t, raw)
	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))

	var again Policy
	require.NoError(t, json.Unmarshal(out, &again))
	assert.Equal(t, p, again)
}

func TestPolicyAbsentFacetsAreOmitted(t *testing.T) {
	out, err := json.Marshal(Policy{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(out))
}

func TestTemporaryRuleKeepsUnknownFields(t *testing.T) {
	var r TemporaryRule
	require.NoError(t, json.Unmarshal([]byte(`{"type":"unblock_site","date":"2026-03-01","reason":"project","site":"wikipedia.org"}`), &r))

	assert.Equal(t, OverrideUnblockSite, r.Type)
	assert.Equal(t, "2026-03-01", r.Date)
	assert.Equal(t, "project", r.Reason.OrElse(""))
	assert.Equal(t, json.RawMessage(`"wikipedia.org"`), r.Extra["site"])

	t.Run("known keys in Extra do not shadow typed fields", func(t *testing.T) {
		r.Extra["type"] = json.RawMessage(`"extra_time"`)
		out, err := json.Marshal(r)
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"unblock_site","date":"2026-03-01","reason":"project","site":"wikipedia.org"}`, string(out))
	})

	t.Run("clone does not share raw values", func(t *testing.T) {
		c := r.clone()
		c.Extra["site"][1] = 'W'
		assert.Equal(t, json.RawMessage(`"wikipedia.org"`), r.Extra["site"])
	})
}

func TestCloneSharesNothing(t *testing.T) {
	p := Default()
	p.Extensions = Extensions{"acme": {"x": json.RawMessage(`1`)}}

	c := p.Clone()
	comm := mustGet(t, c.Communication)
	comm.AllowedContacts = append(comm.AllowedContacts, Contact{Name: "Gran"})
	c.Extensions["acme"]["x"] = json.RawMessage(`2`)

	assert.Empty(t, mustGet(t, p.Communication).AllowedContacts)
	assert.Equal(t, json.RawMessage(`1`), p.Extensions["acme"]["x"])
}

func TestCapString(t *testing.T) {
	assert.Equal(t, "15 minutes", Cap{Kind: CapMinutes, Minutes: 15}.String())
	assert.Equal(t, "blocked", Cap{Kind: CapBlocked}.String())
}

func TestExtensionsUseCanonicalRawJSON(t *testing.T) {
	var e Extensions
	require.NoError(t, json.Unmarshal([]byte(`{"acme":{"v":{"a": 1, "h": "<b>"}}}`), &e))
	assert.Equal(t, json.RawMessage(`{"a":1,"h":"\u003cb\u003e"}`), e["acme"]["v"])

	t.Run("stable across a round trip", func(t *testing.T) {
		out, err := json.Marshal(e)
		require.NoError(t, err)
		var back Extensions
		require.NoError(t, json.Unmarshal(out, &back))
		assert.Equal(t, e, back)
	})

	t.Run("clone canonicalizes values built in code", func(t *testing.T) {
		built := Extensions{"acme": {"v": json.RawMessage(`{ "h" : "a&b" }`)}, "empty": nil}
		c := built.Clone()
		assert.Equal(t, json.RawMessage(`{"h":"a\u0026b"}`), c["acme"]["v"])
		assert.Nil(t, c["empty"])
		assert.Contains(t, c, "empty")
	})
}
