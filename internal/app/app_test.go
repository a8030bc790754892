package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	coretelegram "github.com/bazumi/promobot/core/telegram"
	"github.com/bazumi/promobot/core/telegram/state"
	"github.com/bazumi/promobot/internal/flow"
)

type fakeCtx struct {
	tele.Context
	sender *tele.User
	text   string
	sent   []interface{}
	values map[string]interface{}
}

func newFakeCtx(userID int64, text string) *fakeCtx {
	return &fakeCtx{
		sender: &tele.User{ID: userID},
		text:   text,
		values: make(map[string]interface{}),
	}
}

func (f *fakeCtx) Sender() *tele.User  { return f.sender }
func (f *fakeCtx) Update() tele.Update { return tele.Update{} }
func (f *fakeCtx) Text() string        { return f.text }

func (f *fakeCtx) Chat() *tele.Chat {
	return &tele.Chat{ID: f.sender.ID, Type: tele.ChatPrivate}
}

func (f *fakeCtx) Get(key string) interface{}    { return f.values[key] }
func (f *fakeCtx) Set(key string, v interface{}) { f.values[key] = v }

func (f *fakeCtx) Args() []string {
	fields := strings.Fields(f.text)
	if len(fields) <= 1 {
		return nil
	}
	return fields[1:]
}

func (f *fakeCtx) Send(what interface{}, _ ...interface{}) error {
	f.sent = append(f.sent, what)
	return nil
}

func (f *fakeCtx) firstText() string {
	for _, s := range f.sent {
		if str, ok := s.(string); ok {
			return str
		}
	}
	return ""
}

// fakeRoster marks a fixed set of user ids as operators.
type fakeRoster map[int64]bool

func (r fakeRoster) IsOperator(_ context.Context, userID int64) (bool, error) {
	return r[userID], nil
}

func testApp() *App {
	a := &App{
		cfg: &Config{
			App: Section{
				ChannelUsername: "@bazumi",
				SuperOperatorID: 99,
				ManagerContact:  "@manager",
			},
		},
		states: state.NewMemoryManager(time.Hour),
		roster: fakeRoster{},
	}
	a.flows = flow.NewService(flow.Deps{States: a.states})
	return a
}

func TestGoBackOnEmptyStackShowsMainMenu(t *testing.T) {
	a := testApp()
	c := newFakeCtx(1, btnBack)
	require.NoError(t, a.goBack(c))
	assert.Equal(t, textMainMenu, c.firstText())
}

func TestBackReturnsToPushedScreen(t *testing.T) {
	a := testApp()
	conv := a.states.Get(1)
	conv.PushScreen(screenMain)

	c := newFakeCtx(1, btnBack)
	require.NoError(t, a.goBack(c))
	assert.Equal(t, textMainMenu, c.firstText())
	assert.Zero(t, conv.HistoryDepth(), "back pops the stack")
}

func TestMainMenuResetCollapsesHistory(t *testing.T) {
	a := testApp()
	conv := a.states.Get(1)
	conv.PushScreen(screenMain)
	conv.PushScreen(screenSupport)

	require.NoError(t, a.showMainMenu(newFakeCtx(1, "/start")))
	assert.Zero(t, conv.HistoryDepth())
}

func TestSuperOnlyRejectsRegularOperator(t *testing.T) {
	a := testApp()
	called := false
	h := a.superOnly(func(tele.Context) error {
		called = true
		return nil
	})

	c := newFakeCtx(1, "/add_operator 5")
	require.NoError(t, h(c))
	assert.False(t, called)
	assert.Equal(t, textSuperOnly, c.firstText())

	super := newFakeCtx(99, "/add_operator 5")
	require.NoError(t, h(super))
	assert.True(t, called)
}

func TestRemoveOperatorGatedByRosterNotSuper(t *testing.T) {
	a := testApp()
	reg := coretelegram.NewRegistry(a.states)
	a.Routes(reg)

	remove, ok := reg.Commands.Lookup("/remove_operator")
	require.True(t, ok)

	// A non-operator is denied by the roster check, not the
	// super-operator check.
	c := newFakeCtx(1, "/remove_operator 5")
	require.NoError(t, remove(c))
	assert.Equal(t, textAdminDenied, c.firstText())

	add, ok := reg.Commands.Lookup("/add_operator")
	require.True(t, ok)

	// Roster additions stay pinned to the super operator.
	operator := newFakeCtx(1, "/add_operator 5")
	require.NoError(t, add(operator))
	assert.Equal(t, textSuperOnly, operator.firstText())
}

func TestOperatorArg(t *testing.T) {
	c := newFakeCtx(99, "/add_operator")
	id, err := operatorArg(c, "/add_operator")
	require.NoError(t, err)
	assert.Zero(t, id)
	assert.Contains(t, c.firstText(), "/add_operator")

	c = newFakeCtx(99, "/add_operator abc")
	id, err = operatorArg(c, "/add_operator")
	require.NoError(t, err)
	assert.Zero(t, id)
	assert.Equal(t, textOperatorBadInput, c.firstText())

	c = newFakeCtx(99, "/add_operator 12345")
	id, err = operatorArg(c, "/add_operator")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), id)
	assert.Empty(t, c.sent)
}

func TestSectionNormalizePrependsAt(t *testing.T) {
	s := Section{ChannelUsername: " bazumi ", SuperOperatorID: 1}
	s.normalize()
	assert.Equal(t, "@bazumi", s.ChannelUsername)
	require.NoError(t, s.validate())
}

func TestSectionValidate(t *testing.T) {
	s := Section{SuperOperatorID: 1}
	assert.Error(t, s.validate(), "channel is required")

	s = Section{ChannelUsername: "@bazumi"}
	assert.Error(t, s.validate(), "super operator is required")
}
