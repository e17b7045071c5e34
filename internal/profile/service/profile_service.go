package service

import (
	"context"

	"github.com/zeer-gl/thiqa-gateway/internal/ids"
	"github.com/zeer-gl/thiqa-gateway/internal/logging"
	sessiondomain "github.com/zeer-gl/thiqa-gateway/internal/session/domain"
	sessionrepo "github.com/zeer-gl/thiqa-gateway/internal/session/repository"
	"github.com/zeer-gl/thiqa-gateway/internal/upstream"
)

// ProfileService reads and updates the professional profile. The session
// cache is only ever replaced with a record from an upstream round trip.
type ProfileService struct {
	upstream *upstream.Client
	sessions *sessionrepo.SessionRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(client *upstream.Client, sessions *sessionrepo.SessionRepository) *ProfileService {
	return &ProfileService{upstream: client, sessions: sessions}
}

// Get fetches the authoritative profile and refreshes the session cache.
func (s *ProfileService) Get(ctx context.Context, sess *sessiondomain.Session) (*sessiondomain.Professional, error) {
	actorID, err := sess.ActorID()
	if err != nil {
		return nil, err
	}
	if !ids.IsObjectID(actorID) {
		return nil, sessiondomain.ErrNoActor
	}

	pro, err := s.upstream.GetProfessional(ctx, sess.Token(), actorID)
	if err != nil {
		return nil, err
	}

	s.cache(ctx, sess, pro)
	return pro, nil
}

// Update writes profile fields (multipart upstream) and applies the returned
// record to the session cache.
func (s *ProfileService) Update(ctx context.Context, sess *sessiondomain.Session, fields map[string]string, image *upstream.FileUpload) (*sessiondomain.Professional, error) {
	actorID, err := sess.ActorID()
	if err != nil {
		return nil, err
	}

	pro, err := s.upstream.UpdateProfessional(ctx, sess.Token(), actorID, fields, image)
	if err != nil {
		return nil, err
	}

	s.cache(ctx, sess, pro)
	return pro, nil
}

func (s *ProfileService) cache(ctx context.Context, sess *sessiondomain.Session, pro *sessiondomain.Professional) {
	sess.Professional = pro
	if err := s.sessions.Update(ctx, sess); err != nil {
		logging.NewLogger(ctx).LogWarnf("profile", "session cache not updated: %v", err)
	}
}
