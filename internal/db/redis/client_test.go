package redis

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/iamwavecut/hrbots/internal/db"
	"github.com/iamwavecut/hrbots/internal/db/dbtest"
)

type ClientSuite struct {
	suite.Suite
	mini   *miniredis.Miniredis
	client *Client
	ctx    context.Context
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func newMiniClient(t *testing.T) (*miniredis.Miniredis, *Client) {
	mini := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	return mini, NewWithClient(rdb, DefaultConfig())
}

func (s *ClientSuite) SetupTest() {
	s.mini, s.client = newMiniClient(s.T())
	s.ctx = context.Background()
}

func (s *ClientSuite) TearDownTest() {
	if s.client != nil {
		_ = s.client.Close()
	}
}

func (s *ClientSuite) TestKeyLayout() {
	s.Require().NoError(s.client.AddUserMetric(s.ctx, db.UserRef{ID: "abc", Username: "Alice"}, db.MetricTimeSpent, 30))

	s.True(s.mini.Exists("hrbots:stats:user:abc"))
	s.Equal("Alice", s.mini.HGet("hrbots:stats:user:abc", "username"))
	s.Equal("30", s.mini.HGet("hrbots:stats:user:abc", "time_spent"))

	members, err := s.mini.Members("hrbots:stats:users")
	s.Require().NoError(err)
	s.Equal([]string{"abc"}, members)

	id, err := s.mini.Get("hrbots:stats:idx:username:Alice")
	s.Require().NoError(err)
	s.Equal("abc", id)
}

func (s *ClientSuite) TestDuplicateUsernameKeepsFirstClaim() {
	s.Require().NoError(s.client.AddUserMetric(s.ctx, db.UserRef{ID: "u2", Username: "Sam"}, db.MetricTimeSpent, 1))
	s.Require().NoError(s.client.AddUserMetric(s.ctx, db.UserRef{ID: "u1", Username: "Sam"}, db.MetricTimeSpent, 9))

	got, err := s.client.GetUserStatsByUsername(s.ctx, "Sam")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal("u2", got.UserID)
}

func (s *ClientSuite) TestRecordAndIndexWrittenTogether() {
	s.Require().NoError(s.client.client.ScriptFlush(s.ctx).Err())

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.client.AddUserMetric(s.ctx, db.UserRef{ID: "u7", Username: "Dana"}, db.MetricDistanceTravelled, 1)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	id, err := s.mini.Get("hrbots:stats:idx:username:Dana")
	s.Require().NoError(err)
	s.Equal("u7", id)

	got, err := s.client.GetUserStatsByUsername(s.ctx, "Dana")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(int64(writers), got.DistanceTravelled)
}

func (s *ClientSuite) TestRenameDoesNotClaimName() {
	s.Require().NoError(s.client.AddUserMetric(s.ctx, db.UserRef{ID: "u1", Username: "first"}, db.MetricTimeSpent, 1))
	s.Require().NoError(s.client.AddUserMetric(s.ctx, db.UserRef{ID: "u1", Username: "second"}, db.MetricTimeSpent, 1))
	s.Require().NoError(s.client.AddUserMetric(s.ctx, db.UserRef{ID: "u2", Username: "second"}, db.MetricTimeSpent, 4))

	got, err := s.client.GetUserStatsByUsername(s.ctx, "second")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal("u2", got.UserID)
	s.Equal(int64(4), got.TimeSpent)
}

func (s *ClientSuite) TestListOrderedByUserID() {
	for _, id := range []string{"c", "a", "b"} {
		s.Require().NoError(s.client.AddUserMetric(s.ctx, db.UserRef{ID: id, Username: id}, db.MetricChatMessageChars, 1))
	}
	all, err := s.client.ListUserStats(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("a", all[0].UserID)
	s.Equal("b", all[1].UserID)
	s.Equal("c", all[2].UserID)
}

func (s *ClientSuite) TestUnavailableServer() {
	s.mini.Close()
	_, err := s.client.GetUserStats(s.ctx, "abc")
	s.Error(err)
}

func TestClientContract(t *testing.T) {
	dbtest.RunClientContract(t, func(t *testing.T) db.Client {
		_, client := newMiniClient(t)
		t.Cleanup(func() { _ = client.Close() })
		return client
	})
}
