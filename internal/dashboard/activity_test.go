package dashboard

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailassist/internal/page"
	"github.com/nhle/mailassist/internal/session"
	"github.com/nhle/mailassist/internal/testutil"
)

const statsRoute = "GET /api/email/stats"

func newActivity(env *testutil.Env) *Activity {
	faults := session.NewFaults(env.Doc, page.DefaultAlertDuration, env.Log)
	return New(env.Client, env.Doc, env.Render, faults, env.Clock, 0, env.Log)
}

func TestActivity_LoadRendersCounters(t *testing.T) {
	env := testutil.NewEnv(t, "/dashboard")
	env.Backend.JSON(statsRoute, http.StatusOK, map[string]int{
		"total_emails": 120, "unread_emails": 7, "inbox_count": 100, "sent_count": 20, "today_emails": 4,
	})
	a := newActivity(env)

	require.NoError(t, a.Load(context.Background()))

	html := string(env.Doc.HTML(page.RegionActivity))
	assert.Contains(t, html, "<strong>120</strong>")
	assert.Contains(t, html, "<strong>7</strong>")
	assert.Equal(t, 4, a.Stats().TodayEmails)
}

func TestActivity_LoadFailure(t *testing.T) {
	env := testutil.NewEnv(t, "/dashboard")
	env.Backend.JSON(statsRoute, http.StatusInternalServerError, map[string]string{})
	a := newActivity(env)

	assert.Error(t, a.Load(context.Background()))
	assert.Contains(t, string(env.Doc.HTML(page.RegionActivity)), MsgLoadFailed)
	assert.Equal(t, []string{session.MsgServerError}, env.AlertMessages())
	assert.Nil(t, a.Stats())
}

func TestActivity_RecurringReload(t *testing.T) {
	env := testutil.NewEnv(t, "/dashboard")
	env.Backend.JSON(statsRoute, http.StatusOK, map[string]int{"total_emails": 1})
	a := newActivity(env)

	a.Start()
	env.Clock.Advance(DefaultInterval - time.Second)
	assert.Equal(t, 0, env.Backend.Count(statsRoute))

	env.Clock.Advance(time.Second)
	assert.Equal(t, 1, env.Backend.Count(statsRoute))

	env.Clock.Advance(2 * DefaultInterval)
	assert.Equal(t, 3, env.Backend.Count(statsRoute))

	a.Stop()
	env.Clock.Advance(time.Hour)
	assert.Equal(t, 3, env.Backend.Count(statsRoute))
}

func TestActivity_RefreshSection(t *testing.T) {
	env := testutil.NewEnv(t, "/dashboard")
	env.Backend.JSON(statsRoute, http.StatusOK, map[string]int{"total_emails": 1})
	a := newActivity(env)

	require.NoError(t, a.Refresh(context.Background(), "calendar"))
	assert.Equal(t, 0, env.Backend.Count(statsRoute))

	require.NoError(t, a.Refresh(context.Background(), SectionActivity))
	assert.Equal(t, 1, env.Backend.Count(statsRoute))
}
