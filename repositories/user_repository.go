package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/worldclasstravels/wct_backend/config"
	"github.com/worldclasstravels/wct_backend/models"
)

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Client) *UserRepository {
	return &UserRepository{
		collection: config.GetCollection(db, "users"),
	}
}

// FindByEmail returns the user record for a normalized email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetPasswordResetOTP stores a hashed reset code and its expiry on the user.
func (r *UserRepository) SetPasswordResetOTP(ctx context.Context, email, otpHash string, expires time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"otp":        otpHash,
			"otpExpires": expires,
			"updatedAt":  time.Now(),
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"email": email}, update)
	return err
}

// SetResetToken swaps the consumed OTP for a reset-token digest.
func (r *UserRepository) SetResetToken(ctx context.Context, email, tokenDigest string, expires time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"resetPasswordToken":  tokenDigest,
			"resetTokenExpiresAt": expires,
			"updatedAt":           time.Now(),
		},
		"$unset": bson.M{
			"otp":        "",
			"otpExpires": "",
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"email": email}, update)
	return err
}

// FindByResetToken returns the user holding an unexpired reset-token digest.
func (r *UserRepository) FindByResetToken(ctx context.Context, tokenDigest string) (*models.User, error) {
	filter := bson.M{
		"resetPasswordToken":  tokenDigest,
		"resetTokenExpiresAt": bson.M{"$gt": time.Now()},
	}

	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ResetPassword replaces the password hash and clears every reset artifact.
func (r *UserRepository) ResetPassword(ctx context.Context, userID primitive.ObjectID, passwordHash string) error {
	update := bson.M{
		"$set": bson.M{
			"password":  passwordHash,
			"updatedAt": time.Now(),
		},
		"$unset": bson.M{
			"resetPasswordToken":  "",
			"resetTokenExpiresAt": "",
			"otp":                 "",
			"otpExpires":          "",
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	return err
}
