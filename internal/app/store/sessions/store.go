// internal/app/store/sessions/store.go
package sessions

// The ledger records LeadHub browser sessions. Its _id is the same string id
// carried by the signed session cookie, so the cookie and the ledger entry can
// be matched without a lookup table.

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// End reasons.
const (
	EndLogout   = "logout"
	EndExpired  = "expired"
	EndInactive = "inactive"
	EndDenied   = "denied" // signed in but below the dashboard level
)

// ErrNotFound is returned when no ledger entry exists for an id.
var ErrNotFound = errors.New("session not found")

// Session is one ledger entry.
type Session struct {
	ID    string `bson:"_id"`
	Email string `bson:"email"`
	Level int    `bson:"level"`

	LoginAt      time.Time  `bson:"login_at"`
	LogoutAt     *time.Time `bson:"logout_at,omitempty"`
	LastActiveAt time.Time  `bson:"last_active_at"`

	// "logout", "expired", "inactive", "denied", ""
	EndReason string `bson:"end_reason,omitempty"`

	IP        string `bson:"ip"`
	UserAgent string `bson:"user_agent,omitempty"`

	DurationSecs int64 `bson:"duration_secs,omitempty"`
}

// Open reports whether the session has not been closed.
func (s Session) Open() bool { return s.LogoutAt == nil }

// Store manages the session ledger.
type Store struct {
	c *mongo.Collection
}

// New creates a new sessions Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sessions")}
}

// EnsureIndexes creates necessary indexes for efficient querying.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// open sessions by activity (cleanup job)
		{
			Keys:    bson.D{{Key: "logout_at", Value: 1}, {Key: "last_active_at", Value: -1}},
			Options: options.Index().SetName("idx_sessions_active"),
		},
		// per-account history
		{
			Keys:    bson.D{{Key: "email", Value: 1}, {Key: "login_at", Value: -1}},
			Options: options.Index().SetName("idx_sessions_email"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create opens a ledger entry under id. Any session still open for the same
// email is closed as inactive first.
func (s *Store) Create(ctx context.Context, id, email string, level int, ip, userAgent string) (Session, error) {
	now := time.Now().UTC()

	if email != "" {
		if err := s.closeWhere(ctx, bson.M{"email": email, "logout_at": nil, "_id": bson.M{"$ne": id}}, EndInactive, now); err != nil {
			return Session{}, err
		}
	}

	sess := Session{
		ID:           id,
		Email:        email,
		Level:        level,
		LoginAt:      now,
		LastActiveAt: now,
		IP:           ip,
		UserAgent:    userAgent,
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.c.ReplaceOne(ctx, bson.M{"_id": id}, sess, opts); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Close ends a session with the given reason and records its duration.
// Closing an already closed session is a no-op.
func (s *Store) Close(ctx context.Context, id, reason string) error {
	var sess Session
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if !sess.Open() {
		return nil
	}

	now := time.Now().UTC()
	_, err = s.c.UpdateOne(ctx, bson.M{"_id": id, "logout_at": nil}, bson.M{
		"$set": bson.M{
			"logout_at":     now,
			"end_reason":    reason,
			"duration_secs": int64(now.Sub(sess.LoginAt).Seconds()),
		},
	})
	return err
}

// Touch bumps last_active_at of an open session. It reports whether an open
// session was found.
func (s *Store) Touch(ctx context.Context, id string) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "logout_at": nil},
		bson.M{"$set": bson.M{"last_active_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// GetByID retrieves a session by its ID.
func (s *Store) GetByID(ctx context.Context, id string) (Session, error) {
	var sess Session
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Session{}, ErrNotFound
	}
	return sess, err
}

// RecentByEmail returns the newest sessions of one account.
func (s *Store) RecentByEmail(ctx context.Context, email string, limit int64) ([]Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "login_at", Value: -1}}).SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"email": email}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Session
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountOpen counts sessions active within the given window.
func (s *Store) CountOpen(ctx context.Context, window time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-window)
	return s.c.CountDocuments(ctx, bson.M{
		"logout_at":      nil,
		"last_active_at": bson.M{"$gte": cutoff},
	})
}

// CloseInactive closes sessions that haven't had activity in threshold.
// Called by the cleanup job.
func (s *Store) CloseInactive(ctx context.Context, threshold time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-threshold)
	now := time.Now().UTC()

	res, err := s.c.UpdateMany(ctx,
		bson.M{
			"logout_at":      nil,
			"last_active_at": bson.M{"$lt": cutoff},
		},
		bson.M{"$set": bson.M{
			"logout_at":  now,
			"end_reason": EndInactive,
		}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *Store) closeWhere(ctx context.Context, filter bson.M, reason string, now time.Time) error {
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var sess Session
		if err := cur.Decode(&sess); err != nil {
			continue
		}
		_, _ = s.c.UpdateOne(ctx, bson.M{"_id": sess.ID, "logout_at": nil}, bson.M{
			"$set": bson.M{
				"logout_at":     now,
				"end_reason":    reason,
				"duration_secs": int64(now.Sub(sess.LoginAt).Seconds()),
			},
		})
	}
	return cur.Err()
}
