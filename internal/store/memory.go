package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"scoredAPI/internal/apperrors"
	"scoredAPI/internal/friendship"
	"scoredAPI/internal/notification"
	"scoredAPI/internal/score"
	"scoredAPI/internal/user"
)

// Memory is an in-process store with the same uniqueness and ownership rules
// as the Postgres schema. Ties in creation time are broken by insertion order.
type Memory struct {
	mu  sync.RWMutex
	seq int64
	now func() time.Time

	users    map[string]*memUser
	requests map[string]*memRequest
	friends  map[[2]string]*memFriend
	scores   map[string]*memScore
	devices  map[string]notification.DeviceToken
}

type memUser struct {
	user.User
}

type memRequest struct {
	friendship.FriendRequest
	seq int64
}

type memFriend struct {
	createdAt time.Time
	seq       int64
}

type memScore struct {
	score.Score
	seq int64
}

func NewMemory() *Memory {
	return &Memory{
		now:      time.Now,
		users:    make(map[string]*memUser),
		requests: make(map[string]*memRequest),
		friends:  make(map[[2]string]*memFriend),
		scores:   make(map[string]*memScore),
		devices:  make(map[string]notification.DeviceToken),
	}
}

func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *Memory) next() int64 {
	m.seq++
	return m.seq
}

func pairKey(a, b string) [2]string {
	low, high := orderedPair(a, b)
	return [2]string{low, high}
}

// --- users ---

func (m *Memory) CreateUser(ctx context.Context, u *user.User) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.ClerkID == u.ClerkID {
			for _, other := range m.users {
				if other.ID != existing.ID && other.Email == u.Email {
					return nil, apperrors.New(apperrors.ErrCodeAlreadyExists, "User already exists")
				}
			}
			existing.Email = u.Email
			existing.Name = u.Name
			existing.UpdatedAt = m.now()
			cp := existing.User
			return &cp, nil
		}
	}

	for _, other := range m.users {
		if other.Username == u.Username {
			return nil, apperrors.ErrUsernameTaken
		}
		if other.Email == u.Email {
			return nil, apperrors.New(apperrors.ErrCodeAlreadyExists, "User already exists")
		}
	}

	now := m.now()
	created := user.User{
		ID:        uuid.NewString(),
		ClerkID:   u.ClerkID,
		Email:     u.Email,
		Name:      u.Name,
		Username:  u.Username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.users[created.ID] = &memUser{User: created}
	return &created, nil
}

func (m *Memory) GetUserByID(ctx context.Context, id string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := u.User
	return &cp, nil
}

func (m *Memory) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.ClerkID == clerkID {
			cp := u.User
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *Memory) GetEmailByUsername(ctx context.Context, username string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			return u.Email, nil
		}
	}
	return "", apperrors.ErrUsernameNotFound
}

func (m *Memory) UsernameExists(ctx context.Context, username string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) UpdateUsername(ctx context.Context, userID, username string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	for _, other := range m.users {
		if other.ID != userID && other.Username == username {
			return nil, apperrors.ErrUsernameTaken
		}
	}
	u.Username = username
	u.UpdatedAt = m.now()
	cp := u.User
	return &cp, nil
}

func (m *Memory) UpdateUserByClerkID(ctx context.Context, clerkID, email, name string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var target *memUser
	for _, u := range m.users {
		if u.ClerkID == clerkID {
			target = u
			break
		}
	}
	if target == nil {
		return nil, apperrors.ErrUserNotFound
	}
	for _, other := range m.users {
		if other.ID != target.ID && other.Email == email {
			return nil, apperrors.New(apperrors.ErrCodeAlreadyExists, "Email is already in use")
		}
	}
	target.Email = email
	target.Name = name
	target.UpdatedAt = m.now()
	cp := target.User
	return &cp, nil
}

// --- friendships ---

func (m *Memory) findRequestLocked(a, b string) *memRequest {
	key := pairKey(a, b)
	for _, r := range m.requests {
		if pairKey(r.SenderID, r.ReceiverID) == key {
			return r
		}
	}
	return nil
}

func (m *Memory) FindRequestBetween(ctx context.Context, a, b string) (*friendship.FriendRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r := m.findRequestLocked(a, b)
	if r == nil {
		return nil, nil
	}
	cp := r.FriendRequest
	return &cp, nil
}

func (m *Memory) CreateRequest(ctx context.Context, senderID, receiverID string) (*friendship.FriendRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[senderID]; !ok {
		return nil, apperrors.ErrUserNotFound
	}
	if _, ok := m.users[receiverID]; !ok {
		return nil, apperrors.ErrUserNotFound
	}
	if m.findRequestLocked(senderID, receiverID) != nil {
		return nil, apperrors.ErrDuplicateRequest
	}

	now := m.now()
	r := &memRequest{
		FriendRequest: friendship.FriendRequest{
			ID:         uuid.NewString(),
			SenderID:   senderID,
			ReceiverID: receiverID,
			Status:     friendship.StatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		seq: m.next(),
	}
	m.requests[r.ID] = r
	cp := r.FriendRequest
	return &cp, nil
}

func (m *Memory) ResolveRequest(ctx context.Context, senderID, receiverID string, status friendship.Status) (*friendship.FriendRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var target *memRequest
	for _, r := range m.requests {
		if r.SenderID == senderID && r.ReceiverID == receiverID && r.Status == friendship.StatusPending {
			target = r
			break
		}
	}
	if target == nil {
		return nil, apperrors.ErrRequestNotFound
	}

	now := m.now()
	target.Status = status
	target.UpdatedAt = now
	if status == friendship.StatusAccepted {
		key := pairKey(senderID, receiverID)
		if _, ok := m.friends[key]; !ok {
			m.friends[key] = &memFriend{createdAt: now, seq: m.next()}
		}
	}
	cp := target.FriendRequest
	return &cp, nil
}

func (m *Memory) AreFriends(ctx context.Context, a, b string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.friends[pairKey(a, b)]
	return ok, nil
}

func (m *Memory) ListPendingRequests(ctx context.Context, userID string) ([]*friendship.PendingRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*memRequest
	for _, r := range m.requests {
		if r.ReceiverID == userID && r.Status == friendship.StatusPending {
			matched = append(matched, r)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return newer(matched[i].CreatedAt, matched[i].seq, matched[j].CreatedAt, matched[j].seq)
	})

	out := make([]*friendship.PendingRequest, 0, len(matched))
	for _, r := range matched {
		sender := m.users[r.SenderID]
		out = append(out, &friendship.PendingRequest{
			ID:        r.ID,
			SenderID:  r.SenderID,
			CreatedAt: r.CreatedAt,
			Name:      sender.Name,
			Username:  sender.Username,
		})
	}
	return out, nil
}

func (m *Memory) ListFriends(ctx context.Context, userID string) ([]*friendship.Friend, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type entry struct {
		id string
		f  *memFriend
	}
	var matched []entry
	for key, f := range m.friends {
		switch userID {
		case key[0]:
			matched = append(matched, entry{key[1], f})
		case key[1]:
			matched = append(matched, entry{key[0], f})
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return newer(matched[i].f.createdAt, matched[i].f.seq, matched[j].f.createdAt, matched[j].f.seq)
	})

	out := make([]*friendship.Friend, 0, len(matched))
	for _, e := range matched {
		u := m.users[e.id]
		out = append(out, &friendship.Friend{
			ID:        u.ID,
			Name:      u.Name,
			Username:  u.Username,
			CreatedAt: e.f.createdAt,
		})
	}
	return out, nil
}

func (m *Memory) SearchUsers(ctx context.Context, q, excludeID string, limit int) ([]*user.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(q)
	out := make([]*user.Summary, 0)
	for _, u := range m.users {
		if u.ID == excludeID {
			continue
		}
		if strings.Contains(strings.ToLower(u.Username), needle) || strings.Contains(strings.ToLower(u.Name), needle) {
			out = append(out, u.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- scores ---

func (m *Memory) UpsertScore(ctx context.Context, userID string, value int, note *string, day string) (*score.Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[userID]; !ok {
		return nil, apperrors.ErrUserNotFound
	}

	now := m.now()
	for _, s := range m.scores {
		if s.UserID == userID && s.Date == day {
			s.Score.Score = value
			s.Description = copyNote(note)
			s.UpdatedAt = now
			cp := s.Score
			return &cp, nil
		}
	}

	s := &memScore{
		Score: score.Score{
			ID:          uuid.NewString(),
			UserID:      userID,
			Score:       value,
			Description: copyNote(note),
			Date:        day,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		seq: m.next(),
	}
	m.scores[s.ID] = s
	cp := s.Score
	return &cp, nil
}

func (m *Memory) ListScores(ctx context.Context, userID string, limit int) ([]*score.Score, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*score.Score, 0)
	for _, s := range m.scores {
		if s.UserID == userID {
			cp := s.Score
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) DeleteScore(ctx context.Context, userID, scoreID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.scores[scoreID]
	if !ok || s.UserID != userID {
		return false, nil
	}
	delete(m.scores, scoreID)
	return true, nil
}

func (m *Memory) ListFeed(ctx context.Context, userID string, limit int) ([]*score.FeedEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*memScore
	for _, s := range m.scores {
		if s.UserID == userID {
			continue
		}
		if _, ok := m.friends[pairKey(userID, s.UserID)]; ok {
			matched = append(matched, s)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return newer(matched[i].CreatedAt, matched[i].seq, matched[j].CreatedAt, matched[j].seq)
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]*score.FeedEntry, 0, len(matched))
	for _, s := range matched {
		owner := m.users[s.UserID]
		out = append(out, &score.FeedEntry{
			Score:        s.Score,
			UserName:     owner.Name,
			UserUsername: owner.Username,
		})
	}
	return out, nil
}

// --- device tokens ---

func (m *Memory) SaveDeviceToken(ctx context.Context, t *notification.DeviceToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[t.UserID]; !ok {
		return apperrors.ErrUserNotFound
	}
	saved := *t
	saved.UpdatedAt = m.now()
	m.devices[t.Token] = saved
	return nil
}

func (m *Memory) ListDeviceTokens(ctx context.Context, userID string) ([]notification.DeviceToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []notification.DeviceToken
	for _, t := range m.devices {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func newer(a time.Time, aSeq int64, b time.Time, bSeq int64) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return aSeq > bSeq
}

func copyNote(note *string) *string {
	if note == nil {
		return nil
	}
	n := *note
	return &n
}
