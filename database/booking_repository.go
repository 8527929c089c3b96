package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/njorogedev/estate_hub/models"
	"gorm.io/gorm"
)

// BookingRepository is the GORM-backed booking store. Status transitions are
// conditional UPDATE ... WHERE status IN (...) statements; RowsAffected
// tells the caller whether the guard matched, so two concurrent transitions
// on the same booking can never silently overwrite each other.
type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{db: DB}
}

func (r *BookingRepository) Create(b *models.Booking) error {
	return r.db.Create(b).Error
}

func (r *BookingRepository) FindByID(id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) FindByReference(reference string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.First(&booking, "payment_reference = ?", reference).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) ListByUser(userID uuid.UUID) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.
		Preload("Property").
		Where("user_id = ?", userID).
		Order("visit_at desc").
		Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepository) ListDueForExpiry(userID uuid.UUID, now time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	query := r.db.
		Where("status IN ?", []string{models.BookingPendingPayment, models.BookingPendingVisit}).
		Where("visit_at < ?", now.UTC())
	if userID != uuid.Nil {
		query = query.Where("user_id = ?", userID)
	}
	err := query.Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepository) Transition(id uuid.UUID, fromStatuses []string, updates map[string]interface{}) (bool, error) {
	query := r.db.Model(&models.Booking{}).Where("id = ?", id)
	if len(fromStatuses) > 0 {
		query = query.Where("status IN ?", fromStatuses)
	}
	result := query.Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *BookingRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Booking{}, "id = ?", id).Error
}

// PropertyRepository resolves listings for booking validation.
type PropertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository() *PropertyRepository {
	return &PropertyRepository{db: DB}
}

func (r *PropertyRepository) FindProperty(id uuid.UUID) (*models.Property, error) {
	var property models.Property
	if err := r.db.Preload("Owner").First(&property, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &property, nil
}

// UserRepository resolves authenticated principals to accounts.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository() *UserRepository {
	return &UserRepository{db: DB}
}

func (r *UserRepository) FindUser(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
