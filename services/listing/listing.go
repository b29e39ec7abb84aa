package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	listingRepo "roaddarts/database/repository/listing"
	reviewRepo "roaddarts/database/repository/review"
	userRepo "roaddarts/database/repository/user"
	"roaddarts/models"
	"roaddarts/services/storage"
	"roaddarts/services/tasks"
	"roaddarts/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

var (
	ErrNotFound      = listingRepo.ErrNotFound
	ErrForbidden     = errors.New("you do not have permission to modify this listing")
	ErrLimitReached  = errors.New("listing limit reached for your subscription")
	ErrNameTaken     = errors.New("a listing with this name already exists")
	ErrMediaNotFound = errors.New("media not found on listing")
	ErrInvalidMedia  = errors.New("unsupported media field")
	ErrTooManyImages = fmt.Errorf("a listing can hold at most %d images", MaxImages)
)

// Media fields accepted by UploadMedia.
const (
	MediaLogo   = "businessLogo"
	MediaCover  = "businessCover"
	MediaImages = "images"
)

// MaxImages caps the image gallery of a listing.
const MaxImages = 10

// MediaFile is one uploaded file tagged with the field it belongs to.
type MediaFile struct {
	Field  string
	Reader io.Reader
}

// ContactMessage is a visitor's message to a listing owner.
type ContactMessage struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=5000"`
}

// Allowance resolves account limits from a subscription.
type Allowance interface {
	Permissions(ctx context.Context, email, subscriptionID string) (models.Permissions, error)
}

// ListingService defines listing management operations.
type ListingService interface {
	Create(ctx context.Context, actor models.Actor, in models.Listing) (*models.Listing, error)
	BulkCreate(ctx context.Context, actor models.Actor, in []models.Listing) ([]models.Listing, error)
	Update(ctx context.Context, actor models.Actor, id string, in models.Listing) (*models.Listing, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
	GetBySlug(ctx context.Context, slug string) (*models.ListingResult, error)
	NameAvailable(ctx context.Context, name, excludeID string) (bool, error)
	CanEdit(ctx context.Context, actor models.Actor, slug string) (bool, error)
	UploadMedia(ctx context.Context, actor models.Actor, id string, files []MediaFile) (*models.Listing, error)
	DeleteMedia(ctx context.Context, actor models.Actor, id, url string) (*models.Listing, error)
	ContactOwner(ctx context.Context, id string, msg ContactMessage) error
	CountByOwner(ctx context.Context, userID string) (int64, error)
	BackfillSlugs(ctx context.Context, actor models.Actor) (int, error)
}

// DefaultListingService is the production implementation.
type DefaultListingService struct {
	Repo      listingRepo.ListingRepository
	Reviews   reviewRepo.ReviewRepository
	Users     userRepo.UserRepository
	Allowance Allowance
	Storage   storage.StorageService
	Mail      tasks.EmailQueue
	// MediaFolder is the storage folder prefix for listing media.
	MediaFolder string
}

func (s *DefaultListingService) owned(ctx context.Context, actor models.Actor, id string) (*models.Listing, error) {
	l, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(l.UserID) {
		return nil, ErrForbidden
	}
	return l, nil
}

// remaining returns how many more listings the actor may create. Admins are unlimited (-1).
func (s *DefaultListingService) remaining(ctx context.Context, actor models.Actor) (int, error) {
	if actor.Role == models.RoleAdmin {
		return -1, nil
	}
	u, err := s.Users.GetByID(ctx, actor.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to load account: %w", err)
	}
	perms, err := s.Allowance.Permissions(ctx, u.Email, u.StripeSubID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve permissions: %w", err)
	}
	count, err := s.Repo.CountByOwner(ctx, actor.UserID)
	if err != nil {
		return 0, err
	}
	left := perms.MaxListings - int(count)
	if left < 0 {
		left = 0
	}
	return left, nil
}

// batch tracks names and slugs claimed earlier in the same bulk create.
type batch struct {
	names map[string]bool
	slugs map[string]bool
}

func newBatch() *batch {
	return &batch{names: map[string]bool{}, slugs: map[string]bool{}}
}

// prepare validates in and fills server-owned fields for a new listing.
func (s *DefaultListingService) prepare(ctx context.Context, actor models.Actor, in *models.Listing, taken *batch) error {
	in.Name = strings.TrimSpace(in.Name)
	if err := utils.ValidateStruct(in); err != nil {
		return err
	}
	exists, err := s.Repo.NameExists(ctx, in.Name, "")
	if err != nil {
		return err
	}
	if exists || (taken != nil && taken.names[strings.ToLower(in.Name)]) {
		return ErrNameTaken
	}
	slug, err := utils.UniqueSlug(ctx, in.Name, func(ctx context.Context, slug string) (bool, error) {
		if taken != nil && taken.slugs[slug] {
			return true, nil
		}
		return s.Repo.SlugExists(ctx, slug)
	})
	if err != nil {
		return err
	}

	in.ID = uuid.New().String()
	in.UserID = actor.UserID
	in.Slug = slug
	if in.Status == "" {
		in.Status = models.StatusActive
	}
	if in.Validation.Status == "" {
		in.Validation.Status = models.ValidationNotValidated
	}
	if in.Amenities.Other == nil {
		in.Amenities.Other = []string{}
	}
	if taken != nil {
		taken.slugs[slug] = true
		taken.names[strings.ToLower(in.Name)] = true
	}
	return nil
}

func (s *DefaultListingService) Create(ctx context.Context, actor models.Actor, in models.Listing) (*models.Listing, error) {
	left, err := s.remaining(ctx, actor)
	if err != nil {
		return nil, err
	}
	if left == 0 {
		return nil, ErrLimitReached
	}
	if err := s.prepare(ctx, actor, &in, nil); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, &in); err != nil {
		return nil, err
	}
	utils.GetLogger().Info("Listing created", zap.String("id", in.ID), zap.String("slug", in.Slug), zap.String("owner", actor.UserID))
	return &in, nil
}

// BulkCreate validates every listing before inserting any of them.
func (s *DefaultListingService) BulkCreate(ctx context.Context, actor models.Actor, in []models.Listing) ([]models.Listing, error) {
	if len(in) == 0 {
		return []models.Listing{}, nil
	}
	left, err := s.remaining(ctx, actor)
	if err != nil {
		return nil, err
	}
	if left >= 0 && len(in) > left {
		return nil, ErrLimitReached
	}
	taken := newBatch()
	for i := range in {
		if err := s.prepare(ctx, actor, &in[i], taken); err != nil {
			return nil, fmt.Errorf("listing %d: %w", i, err)
		}
	}
	if err := s.Repo.CreateMany(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}

// Update replaces the editable fields of a listing. Identity, ownership,
// media and timestamps are kept; the slug follows a name change.
func (s *DefaultListingService) Update(ctx context.Context, actor models.Actor, id string, in models.Listing) (*models.Listing, error) {
	current, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := utils.ValidateStruct(&in); err != nil {
		return nil, err
	}

	in.ID = current.ID
	in.UserID = current.UserID
	in.Slug = current.Slug
	in.Media = current.Media
	in.CreatedAt = current.CreatedAt
	if in.Status == "" {
		in.Status = current.Status
	}
	if in.Validation.Status == "" {
		in.Validation = current.Validation
	}
	if in.Amenities.Other == nil {
		in.Amenities.Other = []string{}
	}

	if !strings.EqualFold(in.Name, current.Name) {
		exists, err := s.Repo.NameExists(ctx, in.Name, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrNameTaken
		}
		if in.Slug, err = utils.UniqueSlug(ctx, in.Name, s.Repo.SlugExists); err != nil {
			return nil, err
		}
	}

	if err := s.Repo.Update(ctx, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

// Delete removes the listing and its reviews. Media cleanup is best-effort.
func (s *DefaultListingService) Delete(ctx context.Context, actor models.Actor, id string) error {
	l, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.Reviews.DeleteByListing(ctx, id); err != nil {
		utils.GetLogger().Error("Failed to delete reviews of listing", zap.String("id", id), zap.Error(err))
	}
	for _, url := range mediaURLs(l.Media) {
		if err := s.Storage.DeleteByURL(ctx, url); err != nil {
			utils.GetLogger().Warn("Failed to delete listing media", zap.String("url", url), zap.Error(err))
		}
	}
	return nil
}

func (s *DefaultListingService) GetBySlug(ctx context.Context, slug string) (*models.ListingResult, error) {
	return s.Repo.GetBySlug(ctx, slug)
}

func (s *DefaultListingService) NameAvailable(ctx context.Context, name, excludeID string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}
	exists, err := s.Repo.NameExists(ctx, name, excludeID)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func (s *DefaultListingService) CanEdit(ctx context.Context, actor models.Actor, slug string) (bool, error) {
	l, err := s.Repo.GetBySlug(ctx, slug)
	if err != nil {
		return false, err
	}
	return actor.CanManage(l.UserID), nil
}

func (s *DefaultListingService) CountByOwner(ctx context.Context, userID string) (int64, error) {
	return s.Repo.CountByOwner(ctx, userID)
}

func (s *DefaultListingService) folder(id string) string {
	base := s.MediaFolder
	if base == "" {
		base = "roaddarts/listings"
	}
	return base + "/" + id
}

// UploadMedia stores files and records their URLs. A new logo or cover replaces
// the previous one; images are appended up to MaxImages.
func (s *DefaultListingService) UploadMedia(ctx context.Context, actor models.Actor, id string, files []MediaFile) (*models.Listing, error) {
	l, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	images := 0
	for _, f := range files {
		switch f.Field {
		case MediaLogo, MediaCover:
		case MediaImages:
			images++
		default:
			return nil, ErrInvalidMedia
		}
	}
	if len(l.Media.Images)+images > MaxImages {
		return nil, ErrTooManyImages
	}

	media := l.Media
	var replaced, uploaded []string
	for _, f := range files {
		res, err := s.Storage.Upload(ctx, f.Reader, s.folder(id))
		if err != nil {
			s.discard(ctx, uploaded)
			return nil, err
		}
		uploaded = append(uploaded, res.URL)
		switch f.Field {
		case MediaLogo:
			if media.Logo != "" {
				replaced = append(replaced, media.Logo)
			}
			media.Logo = res.URL
		case MediaCover:
			if media.Cover != "" {
				replaced = append(replaced, media.Cover)
			}
			media.Cover = res.URL
		case MediaImages:
			media.Images = append(media.Images, res.URL)
		}
	}

	if err := s.Repo.UpdateWithDocument(ctx, id, bson.M{"$set": bson.M{"media": media}}); err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}
	s.discard(ctx, replaced)
	l.Media = media
	return l, nil
}

// discard removes stored media no listing references. Failures are only logged.
func (s *DefaultListingService) discard(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.Storage.DeleteByURL(ctx, url); err != nil {
			utils.GetLogger().Warn("Failed to delete media", zap.String("url", url), zap.Error(err))
		}
	}
}

// DeleteMedia detaches url from the listing and removes it from storage.
func (s *DefaultListingService) DeleteMedia(ctx context.Context, actor models.Actor, id, url string) (*models.Listing, error) {
	l, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	media, ok := withoutURL(l.Media, url)
	if !ok {
		return nil, ErrMediaNotFound
	}
	if err := s.Storage.DeleteByURL(ctx, url); err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateWithDocument(ctx, id, bson.M{"$set": bson.M{"media": media}}); err != nil {
		return nil, err
	}
	l.Media = media
	return l, nil
}

// ContactOwner queues the visitor's message to the owner's email.
func (s *DefaultListingService) ContactOwner(ctx context.Context, id string, msg ContactMessage) error {
	if err := utils.ValidateStruct(&msg); err != nil {
		return err
	}
	l, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	owner, err := s.Users.GetByID(ctx, l.UserID)
	if err != nil {
		return fmt.Errorf("failed to load listing owner: %w", err)
	}
	return s.Mail.QueueContactOwner(ctx, owner.Email, tasks.EmailPayload{
		Name:        owner.Username,
		ReplyTo:     msg.Email,
		SenderName:  msg.Name,
		Message:     msg.Message,
		ListingName: l.Name,
	})
}

func mediaURLs(m models.Media) []string {
	var urls []string
	for _, u := range append([]string{m.Logo, m.Cover, m.Video}, m.Images...) {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

func withoutURL(m models.Media, url string) (models.Media, bool) {
	found := false
	switch url {
	case "":
		return m, false
	case m.Logo:
		m.Logo, found = "", true
	case m.Cover:
		m.Cover, found = "", true
	case m.Video:
		m.Video, found = "", true
	}
	images := make([]string, 0, len(m.Images))
	for _, img := range m.Images {
		if img == url {
			found = true
			continue
		}
		images = append(images, img)
	}
	m.Images = images
	return m, found
}

// BackfillSlugs gives every listing stored without a slug one derived from its
// name, and returns how many were updated. Admin only.
func (s *DefaultListingService) BackfillSlugs(ctx context.Context, actor models.Actor) (int, error) {
	if actor.Role != models.RoleAdmin {
		return 0, ErrForbidden
	}
	ls, err := s.Repo.ListWithoutSlug(ctx)
	if err != nil {
		return 0, err
	}
	taken := newBatch()
	updated := 0
	for _, l := range ls {
		slug, err := utils.UniqueSlug(ctx, l.Name, func(ctx context.Context, slug string) (bool, error) {
			if taken.slugs[slug] {
				return true, nil
			}
			return s.Repo.SlugExists(ctx, slug)
		})
		if err != nil {
			return updated, err
		}
		if err := s.Repo.UpdateWithDocument(ctx, l.ID, bson.M{"$set": bson.M{"slug": slug}}); err != nil {
			return updated, err
		}
		taken.slugs[slug] = true
		updated++
	}
	utils.GetLogger().Info("Slugs backfilled", zap.Int("count", updated))
	return updated, nil
}
