// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/referee-engine/pkg/types"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"ScholarOne", ScholarOne, false},
		{" editorial_manager ", EditorialManager, false},
		{"ejpress", EJPress, false},
		{"", Generic, false},
		{"ojs", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func referees(statuses ...string) []types.RefereeRecord {
	out := make([]types.RefereeRecord, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, types.RefereeRecord{Person: types.Person{Name: "R"}, Status: s})
	}
	return out
}

func TestAwaitingReferees(t *testing.T) {
	rules, err := RulesFor(types.JournalConfig{Code: "SICON", Platform: "scholarone"})
	require.NoError(t, err)

	tests := []struct {
		name string
		m    types.ManuscriptRecord
		want bool
	}{
		{"awaiting with none", types.ManuscriptRecord{Status: "awaiting referee selection"}, true},
		{"only declined", types.ManuscriptRecord{Status: "Awaiting Referee Selection", Referees: referees("Declined")}, true},
		{"one active", types.ManuscriptRecord{Status: "Awaiting Referee Selection", Referees: referees("Agreed", "Declined")}, false},
		{"two active", types.ManuscriptRecord{Status: "Awaiting Referee Selection", Referees: referees("Agreed", "Invited")}, false},
		{"other status", types.ManuscriptRecord{Status: "Under Review"}, false},
		{"no status", types.ManuscriptRecord{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.AwaitingReferees(tt.m))
		})
	}
}

func TestRulesFor_Overrides(t *testing.T) {
	rules, err := RulesFor(types.JournalConfig{
		Code:             "MAFE",
		Platform:         "editorial_manager",
		AwaitingStatuses: []string{"Needs Reviewers"},
	})
	require.NoError(t, err)
	assert.Equal(t, EditorialManager, rules.Kind)
	assert.Equal(t, []string{"Needs Reviewers"}, rules.AwaitingStatuses)
	assert.Equal(t, Defaults(EditorialManager).ActiveRefereeStatuses, rules.ActiveRefereeStatuses)
	assert.True(t, rules.AwaitingReferees(types.ManuscriptRecord{Status: "needs reviewers"}))

	_, err = RulesFor(types.JournalConfig{Code: "X", Platform: "ojs"})
	assert.ErrorContains(t, err, "journal X")
}

func TestAwaitingReferees_RequiredFromConfig(t *testing.T) {
	rules, err := RulesFor(types.JournalConfig{Code: "SIFIN", Platform: "scholarone", RequiredReferees: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, rules.RequiredReferees)

	m := types.ManuscriptRecord{Status: "Awaiting Referee Selection", Referees: referees("Agreed")}
	assert.Equal(t, 1, rules.ActiveReferees(m))
	assert.True(t, rules.AwaitingReferees(m))

	m.Referees = referees("Agreed", "Invited")
	assert.False(t, rules.AwaitingReferees(m))

	assert.Equal(t, 1, Defaults(ScholarOne).RequiredReferees)
	assert.True(t, Rules{AwaitingStatuses: []string{"Submitted"}}.AwaitingReferees(types.ManuscriptRecord{Status: "Submitted"}))
}
