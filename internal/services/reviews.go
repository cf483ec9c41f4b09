package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hasinarivo/vetcare-api/internal/errs"
	"github.com/hasinarivo/vetcare-api/internal/models"
)

type ReviewStore interface {
	// Insert persists the review. A duplicate (client, veterinarian) pair
	// surfaces as a Conflict error, backed by the unique index.
	Insert(ctx context.Context, r *models.Review) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	FindByVet(ctx context.Context, vetID primitive.ObjectID) ([]models.Review, error)
	Update(ctx context.Context, r *models.Review) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// AggregateForVet computes avg(rating) and count over the
	// veterinarian's reviews. Zero reviews yields (0, 0).
	AggregateForVet(ctx context.Context, vetID primitive.ObjectID) (avg float64, count int, err error)
}

type RatingWriter interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	SetRating(ctx context.Context, vetID primitive.ObjectID, avg float64, count int) error
}

// ReviewService owns reviews and the denormalized rating aggregate on the
// veterinarian record. The aggregate is recomputed after every write; it is
// eventually consistent, not transactional — concurrent submissions may
// briefly leave a stale average, corrected by the next write.
type ReviewService struct {
	reviews ReviewStore
	users   RatingWriter
	now     func() time.Time
}

func NewReviewService(reviews ReviewStore, users RatingWriter) *ReviewService {
	return &ReviewService{reviews: reviews, users: users, now: time.Now}
}

func (s *ReviewService) Create(ctx context.Context, clientID primitive.ObjectID, role models.Role, vetID primitive.ObjectID, rating float64, text string) (*models.Review, error) {
	if role != models.RoleClient {
		return nil, errs.Authorization("only clients can review veterinarians")
	}
	if rating < 0 || rating > 5 {
		return nil, errs.Validation("rating must be between 0 and 5")
	}
	vet, err := s.users.FindByID(ctx, vetID)
	if err != nil {
		return nil, err
	}
	if vet.Role != models.RoleVeterinarian {
		return nil, errs.Validation("reviews can only target veterinarians")
	}

	review := &models.Review{
		ID:             primitive.NewObjectID(),
		ClientID:       clientID,
		VeterinarianID: vetID,
		Rating:         rating,
		Review:         text,
		CreatedAt:      s.now(),
	}
	if err := s.reviews.Insert(ctx, review); err != nil {
		return nil, err
	}
	if err := s.recomputeAggregate(ctx, vetID); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) Update(ctx context.Context, callerID, reviewID primitive.ObjectID, rating float64, text string) (*models.Review, error) {
	if rating < 0 || rating > 5 {
		return nil, errs.Validation("rating must be between 0 and 5")
	}
	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.ClientID != callerID {
		return nil, errs.Authorization("you can only edit your own review")
	}
	review.Rating = rating
	review.Review = text
	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}
	if err := s.recomputeAggregate(ctx, review.VeterinarianID); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) Delete(ctx context.Context, callerID primitive.ObjectID, role models.Role, reviewID primitive.ObjectID) error {
	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.ClientID != callerID && role != models.RoleAdmin {
		return errs.Authorization("you can only delete your own review")
	}
	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		return err
	}
	return s.recomputeAggregate(ctx, review.VeterinarianID)
}

func (s *ReviewService) ListForVet(ctx context.Context, vetID primitive.ObjectID) ([]models.Review, error) {
	return s.reviews.FindByVet(ctx, vetID)
}

// recomputeAggregate re-reads the review aggregate and writes it back to
// the veterinarian document. Deleting the last review resets the rating to
// 0/0.
func (s *ReviewService) recomputeAggregate(ctx context.Context, vetID primitive.ObjectID) error {
	avg, count, err := s.reviews.AggregateForVet(ctx, vetID)
	if err != nil {
		return err
	}
	return s.users.SetRating(ctx, vetID, avg, count)
}
