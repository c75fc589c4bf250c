package access

import (
	"testing"

	"benchshare/internal/models"
	"benchshare/internal/session"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		published  bool
		own        bool
		admin      bool
		wantNo     bool
		wantPublic bool
	}{
		{"unpublished owner", false, true, false, true, true},
		{"unpublished admin", false, false, true, true, true},
		{"unpublished stranger", false, false, false, false, false},
		{"published owner", true, true, false, false, true},
		{"published admin", true, false, true, false, true},
		{"published stranger", true, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := models.Page{ID: 5, Published: tt.published}
			st := session.State{Admin: tt.admin, Own: map[int64]bool{}}
			if tt.own {
				st.Own[5] = true
			}

			d := Evaluate(page, st)

			assert.Equal(t, tt.own, d.IsOwn)
			assert.Equal(t, tt.admin, d.IsAdmin)
			assert.Equal(t, tt.wantNo, d.NoIndex)
			assert.Equal(t, tt.wantPublic, d.CanSeeUnpublished)
			assert.Equal(t, tt.wantPublic, d.CanPublish())
		})
	}
}

func TestEvaluate_OwnershipIsPerPage(t *testing.T) {
	st := session.State{Own: map[int64]bool{4: true}}

	d := Evaluate(models.Page{ID: 5}, st)

	assert.False(t, d.IsOwn)
	assert.False(t, d.NoIndex)
}

func TestEvaluate_NilMaps(t *testing.T) {
	d := Evaluate(models.Page{ID: 1}, session.State{})

	assert.Equal(t, Decision{}, d)
}

func TestDecision_CanView(t *testing.T) {
	assert.True(t, Decision{}.CanView(models.Page{Published: true}))
	assert.False(t, Decision{}.CanView(models.Page{}))
	assert.True(t, Decision{CanSeeUnpublished: true}.CanView(models.Page{}))
}
