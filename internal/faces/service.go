// Package faces orchestrates the face pipeline: locate a face, extract its
// embedding, and answer enroll/recognize/delete against the registry.
package faces

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"strings"
	"sync"

	"github.com/dwe-corp/facial-auth/internal/authapi"
	"github.com/dwe-corp/facial-auth/internal/imaging"
	"github.com/dwe-corp/facial-auth/internal/registry"
)

var (
	// ErrNoFaceDetected means the locator found no face in the image.
	ErrNoFaceDetected = errors.New("no face detected")
	// ErrNoEmbedding means a face was located but no embedding could be
	// extracted from the crop.
	ErrNoEmbedding = errors.New("no embedding extracted")
	// ErrNotEnrolled means the identity has no enrolled samples.
	ErrNotEnrolled = errors.New("identity not enrolled")
	// ErrBadName rejects identity names that cannot be used as an archive
	// directory name.
	ErrBadName = errors.New("invalid identity name")
)

// Locator finds candidate face bounding boxes in an image, in the
// detector's native order.
type Locator interface {
	Detect(img image.Image) []image.Rectangle
}

// Embedder turns a cropped face image into a fixed-length vector. A nil
// vector with a nil error means no embedding could be extracted.
type Embedder interface {
	ComputeEmbedding(ctx context.Context, imageData []byte) ([]float64, error)
}

// Resolver maps names and ids to user records in the authentication service.
type Resolver interface {
	GetUser(ctx context.Context, id int) (*authapi.User, error)
	FindUserByName(ctx context.Context, name string) (*authapi.User, error)
	ListUsers(ctx context.Context) ([]authapi.User, error)
}

// Service owns the registry and its collaborators. All registry mutations
// and their persists are serialized by a single mutex; recognition reads a
// consistent snapshot and may run concurrently.
type Service struct {
	reg       *registry.Registry
	store     *registry.Store
	locator   Locator
	embedder  Embedder
	resolver  Resolver
	archive   *Archive
	tolerance float64

	mu sync.Mutex // serializes mutate+persist sequences
}

// NewService wires the face pipeline together. The registry must already be
// loaded from the store.
func NewService(reg *registry.Registry, store *registry.Store, locator Locator,
	embedder Embedder, resolver Resolver, facesDir string, tolerance float64) *Service {
	return &Service{
		reg:       reg,
		store:     store,
		locator:   locator,
		embedder:  embedder,
		resolver:  resolver,
		archive:   NewArchive(facesDir),
		tolerance: tolerance,
	}
}

// Outcome classifies a recognition attempt.
type Outcome int

const (
	// OutcomeNoFace means the locator found no face (normal negative).
	OutcomeNoFace Outcome = iota
	// OutcomeNoEmbedding means no embedding could be extracted (normal
	// negative).
	OutcomeNoEmbedding
	// OutcomeNotRecognized means the nearest enrolled face was beyond
	// tolerance, or the registry is empty.
	OutcomeNotRecognized
	// OutcomeMatched means an enrolled identity matched.
	OutcomeMatched
)

// Recognition is the answer to a recognition query.
type Recognition struct {
	Outcome  Outcome
	Name     string        // matched identity name, set when Outcome is OutcomeMatched
	Distance float64       // winning distance, set when a scan happened
	User     *authapi.User // resolved record; nil when the resolver failed or has no match
}

// extractEmbedding runs the locate → crop → embed steps shared by enrollment
// and recognition. It returns the embedding and the crop it came from.
func (s *Service) extractEmbedding(ctx context.Context, img image.Image) ([]float64, image.Image, error) {
	boxes := s.locator.Detect(img)
	if len(boxes) == 0 {
		return nil, nil, ErrNoFaceDetected
	}

	// First detected box, in the locator's native order. Multi-face images
	// have no disambiguation policy; this is documented behavior.
	crop, err := imaging.PrepareCrop(img, boxes[0])
	if err != nil {
		return nil, nil, fmt.Errorf("cropping face region: %w", err)
	}

	data, err := imaging.EncodeJPEG(crop)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding face crop: %w", err)
	}

	embedding, err := s.embedder.ComputeEmbedding(ctx, data)
	if err != nil {
		return nil, nil, fmt.Errorf("computing embedding: %w", err)
	}
	if len(embedding) == 0 {
		return nil, nil, ErrNoEmbedding
	}
	return embedding, crop, nil
}

// Recognize answers whether the image contains an enrolled face. A missing
// face or embedding is a normal negative outcome, not an error. Resolver
// failures degrade the answer to "matched name, identity unresolved".
func (s *Service) Recognize(ctx context.Context, img image.Image) (*Recognition, error) {
	embedding, _, err := s.extractEmbedding(ctx, img)
	switch {
	case errors.Is(err, ErrNoFaceDetected):
		return &Recognition{Outcome: OutcomeNoFace}, nil
	case errors.Is(err, ErrNoEmbedding):
		return &Recognition{Outcome: OutcomeNoEmbedding}, nil
	case err != nil:
		return nil, err
	}

	name, dist, ok := s.reg.Match(embedding, s.tolerance)
	if !ok {
		return &Recognition{Outcome: OutcomeNotRecognized, Distance: dist}, nil
	}

	rec := &Recognition{Outcome: OutcomeMatched, Name: name, Distance: dist}
	user, err := s.resolver.FindUserByName(ctx, name)
	if err != nil {
		// Still report the matched name; the identity stays unresolved.
		log.Printf("could not resolve identity %q: %v", sanitizeName(name), err)
		return rec, nil
	}
	rec.User = user
	return rec, nil
}

// Enroll adds one face sample for the user with the given id. The user is
// resolved first; the sample is appended to the registry, the registry is
// persisted, and the raw crop is archived for audit.
func (s *Service) Enroll(ctx context.Context, img image.Image, userID int) (*authapi.User, error) {
	user, err := s.resolver.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !validName(user.Nome) {
		return nil, fmt.Errorf("user %d has name %q: %w", userID, user.Nome, ErrBadName)
	}

	embedding, crop, err := s.extractEmbedding(ctx, img)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reg.Append(user.Nome, embedding)
	if err := s.store.Save(s.reg); err != nil {
		// The in-memory entry stays ahead of disk until the next
		// successful persist; a crash before then loses it.
		return nil, fmt.Errorf("persisting registry: %w", err)
	}

	if _, err := s.archive.SaveCrop(user.Nome, crop); err != nil {
		return nil, fmt.Errorf("archiving enrollment crop: %w", err)
	}
	return user, nil
}

// Delete removes every enrolled sample for the identity and its archived
// crops. An identity with zero samples yields ErrNotEnrolled.
func (s *Service) Delete(name string) (int, error) {
	if !validName(name) {
		return 0, ErrBadName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.reg.RemoveByName(name)
	if removed == 0 {
		return 0, ErrNotEnrolled
	}
	if err := s.store.Save(s.reg); err != nil {
		return 0, fmt.Errorf("persisting registry: %w", err)
	}

	if err := s.archive.Remove(name); err != nil {
		return 0, fmt.Errorf("removing archived crops: %w", err)
	}
	return removed, nil
}

// EnrolledUser joins an enrolled identity with its resolved user record.
// User is nil when the identity is unknown to the authentication service or
// the service was unreachable.
type EnrolledUser struct {
	Name       string
	FacesCount int
	User       *authapi.User
}

// EnrolledUsers lists enrolled identities with sample counts, joined with
// records from the authentication service. Resolver failures degrade to
// names without records rather than failing the listing.
func (s *Service) EnrolledUsers(ctx context.Context) []EnrolledUser {
	enrolled := s.reg.Enrolled()

	byName := make(map[string]*authapi.User)
	users, err := s.resolver.ListUsers(ctx)
	if err != nil {
		log.Printf("could not list users from auth service: %v", err)
	} else {
		for i := range users {
			byName[authapi.NormalizeName(users[i].Nome)] = &users[i]
		}
	}

	out := make([]EnrolledUser, 0, len(enrolled))
	for _, e := range enrolled {
		out = append(out, EnrolledUser{
			Name:       e.Name,
			FacesCount: e.Samples,
			User:       byName[authapi.NormalizeName(e.Name)],
		})
	}
	return out
}

// Tolerance returns the configured matching tolerance.
func (s *Service) Tolerance() float64 {
	return s.tolerance
}

// SampleCount returns the total number of enrolled samples.
func (s *Service) SampleCount() int {
	return s.reg.Len()
}

// validName rejects names that are empty or unusable as a directory name
// under the archive root.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\")
}

// sanitizeName removes newlines so attacker-controlled names cannot forge
// log lines.
func sanitizeName(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}
