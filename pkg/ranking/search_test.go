package ranking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userSelf(u UserAttrs) UserAttrs { return u }

func usernames(ranked []Ranked[UserAttrs]) []string {
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.Item.Username
	}
	return out
}

func TestRankUsers(t *testing.T) {
	users := []UserAttrs{
		{ID: uuid.New(), Username: "susanna"},
		{ID: uuid.New(), Username: "joanna"},
		{ID: uuid.New(), Username: "bob", Bio: "Annual marathon runner"},
		{ID: uuid.New(), Username: "annabel"},
		{ID: uuid.New(), Username: "ann"},
		{ID: uuid.New(), Username: "carl", Bio: "nothing here"},
	}

	ranked := RankUsers("ann", users, userSelf)
	assert.Equal(t, []string{"ann", "annabel", "joanna", "susanna", "bob"}, usernames(ranked))

	assert.Equal(t, TierPrefix, ranked[0].Tier)
	assert.Equal(t, 90, ranked[0].Score)
	assert.Equal(t, 86, ranked[1].Score)
	assert.Equal(t, 77, ranked[2].Score)
	assert.Equal(t, 76, ranked[3].Score)
	assert.Equal(t, TierAuxiliary, ranked[4].Tier)
}

func TestRankUsers_CaseInsensitiveAndTieBreak(t *testing.T) {
	users := []UserAttrs{
		{ID: uuid.New(), Username: "Zed_x"},
		{ID: uuid.New(), Username: "ZED_a"},
	}
	ranked := RankUsers("zed", users, userSelf)
	require.Len(t, ranked, 2)
	assert.Equal(t, ranked[0].Score, ranked[1].Score)
	assert.Equal(t, []string{"ZED_a", "Zed_x"}, usernames(ranked))
}

func TestRankUsers_EmptyTerm(t *testing.T) {
	assert.Empty(t, RankUsers("  ", []UserAttrs{{Username: "ann"}}, userSelf))
}

func TestUserScore_ShortUsername(t *testing.T) {
	assert.Equal(t, 90, UserScore("annabel", TierPrefix, "ann"))
}

func TestRankPosts(t *testing.T) {
	now := time.Now()
	prefix := PostAttrs{ID: uuid.New(), Caption: "Sunset over the bay", CreatedAt: now.Add(-time.Hour)}
	contains := PostAttrs{ID: uuid.New(), Caption: "Another SUNSET", CreatedAt: now}
	tagged := PostAttrs{ID: uuid.New(), Caption: "no words", Tags: []string{"Sunset"}, CreatedAt: now}
	tagPartial := PostAttrs{ID: uuid.New(), Caption: "", Tags: []string{"sunsets"}, CreatedAt: now}
	miss := PostAttrs{ID: uuid.New(), Caption: "rain", Tags: []string{"cloud"}, CreatedAt: now}
	prefixWithTag := PostAttrs{ID: uuid.New(), Caption: "sunset again", Tags: []string{"sunset"}, CreatedAt: now.Add(-2 * time.Hour)}

	ranked := RankPosts("sunset", []PostAttrs{miss, tagPartial, tagged, contains, prefix, prefixWithTag}, self)
	require.Len(t, ranked, 5)

	assert.Equal(t, prefixWithTag.ID, ranked[0].Item.ID)
	assert.Equal(t, PostCaptionPrefix+PostExactTagBonus, ranked[0].Score)
	assert.Equal(t, prefix.ID, ranked[1].Item.ID)
	assert.Equal(t, PostCaptionPrefix, ranked[1].Score)
	assert.Equal(t, contains.ID, ranked[2].Item.ID)
	assert.Equal(t, PostCaptionContains, ranked[2].Score)
	assert.Equal(t, tagged.ID, ranked[3].Item.ID)
	assert.Equal(t, PostTagOnly+PostExactTagBonus, ranked[3].Score)
	assert.Equal(t, tagPartial.ID, ranked[4].Item.ID)
	assert.Equal(t, PostTagOnly, ranked[4].Score)
}

func TestRankTagged(t *testing.T) {
	now := time.Now()
	exactOld := PostAttrs{ID: uuid.New(), Tags: []string{"Travel"}, CreatedAt: now.Add(-time.Hour)}
	exactNew := PostAttrs{ID: uuid.New(), Tags: []string{"x", "travel"}, CreatedAt: now}
	partial := PostAttrs{ID: uuid.New(), Tags: []string{"travelgram"}, CreatedAt: now}
	miss := PostAttrs{ID: uuid.New(), Caption: "travel", CreatedAt: now}

	ranked := RankTagged("travel", []PostAttrs{partial, miss, exactOld, exactNew}, self)
	require.Len(t, ranked, 3)
	assert.Equal(t, exactNew.ID, ranked[0].Item.ID)
	assert.Equal(t, exactOld.ID, ranked[1].Item.ID)
	assert.Equal(t, TagExact, ranked[1].Score)
	assert.Equal(t, partial.ID, ranked[2].Item.ID)
	assert.Equal(t, TagPartial, ranked[2].Score)
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		raw     string
		kind    QueryKind
		term    string
		wantErr bool
	}{
		{raw: "", wantErr: true},
		{raw: "   ", wantErr: true},
		{raw: "@ann", kind: QueryUsers, term: "ann"},
		{raw: "@ ann ", kind: QueryUsers, term: "ann"},
		{raw: "#travel", kind: QueryTag, term: "travel"},
		{raw: "sunset walk", kind: QueryFreeText, term: "sunset walk"},
		{raw: "a@b", kind: QueryFreeText, term: "a@b"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			q, err := ParseQuery(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrEmptyQuery)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, q.Kind)
			assert.Equal(t, tt.term, q.Term)
		})
	}
}

func TestPageRule_Normalize(t *testing.T) {
	tests := []struct {
		name   string
		rule   PageRule
		limit  string
		offset string
		want   Page
	}{
		{name: "missing", rule: UserSearchPage, want: Page{Limit: 15}},
		{name: "zero limit", rule: PostSearchPage, limit: "0", want: Page{Limit: 20}},
		{name: "non numeric", rule: SuggestPage, limit: "ten", offset: "x", want: Page{Limit: 10}},
		{name: "negative limit", rule: UserSearchPage, limit: "-4", want: Page{Limit: 1}},
		{name: "over max", rule: UserSearchPage, limit: "500", want: Page{Limit: 40}},
		{name: "negative offset", rule: PostSearchPage, limit: "5", offset: "-3", want: Page{Limit: 5}},
		{name: "offset kept", rule: PostSearchPage, limit: "5", offset: "12", want: Page{Limit: 5, Offset: 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Normalize(tt.limit, tt.offset))
		})
	}
}

func TestSplitSuggest(t *testing.T) {
	u, p := SplitSuggest(7)
	assert.Equal(t, 3, u)
	assert.Equal(t, 4, p)

	u, p = SplitSuggest(1)
	assert.Equal(t, 0, u)
	assert.Equal(t, 1, p)
}
