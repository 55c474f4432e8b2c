// controllers/visa_controller.go
package controllers

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/worldclasstravels/wct_backend/config"
	"github.com/worldclasstravels/wct_backend/models"
	"github.com/worldclasstravels/wct_backend/utils"
)

// VisaController manages visa listings and their cover images. Responses use
// the success-flavored envelope the dashboard and the public pages both read.
type VisaController struct {
	DB     *mongo.Client
	logger *log.Logger
}

// NewVisaController creates a new visa controller
func NewVisaController(db *mongo.Client) *VisaController {
	return &VisaController{
		DB:     db,
		logger: log.New(os.Stdout, "[VISA] ", log.LstdFlags),
	}
}

// caseInsensitive matches the unique index on country so lookups and
// uniqueness checks agree on what counts as a duplicate.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// CreateVisa adds a listing from a multipart form with a required cover image.
func (vc *VisaController) CreateVisa(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.VisaRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.AdminResponse{
			Success: false,
			Message: "Invalid form data",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.AdminResponse{
			Success: false,
			Message: "Country, duration, description and a non-negative price are required",
		})
	}

	file, err := c.FormFile("coverImage")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.AdminResponse{
			Success: false,
			Message: "A cover image is required",
		})
	}
	if !utils.IsValidImageFile(file) {
		return c.JSON(http.StatusBadRequest, models.AdminResponse{
			Success: false,
			Message: "Cover image must be a jpg, jpeg or png file",
		})
	}

	country := utils.SanitizeInput(req.Country)
	visaColl := config.GetCollection(vc.DB, "visas")

	count, err := visaColl.CountDocuments(ctx, bson.M{"country": country},
		options.Count().SetCollation(caseInsensitive))
	if err != nil {
		vc.logger.Printf("Failed to check country uniqueness: %v", err)
		return c.JSON(http.StatusInternalServerError, models.AdminResponse{
			Success: false,
			Message: "Failed to create visa listing",
		})
	}
	if count > 0 {
		return c.JSON(http.StatusConflict, models.AdminResponse{
			Success: false,
			Message: "A visa listing for this country already exists",
		})
	}

	coverURL, imagePath, err := utils.SaveVisaImage(file)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.AdminResponse{
			Success: false,
			Message: "Failed to process cover image: " + err.Error(),
		})
	}

	now := time.Now()
	visa := models.Visa{
		Country:     country,
		Duration:    utils.SanitizeInput(req.Duration),
		Price:       req.Price,
		Description: utils.SanitizeInput(req.Description),
		CoverImage:  coverURL,
		ImagePath:   imagePath,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	result, err := visaColl.InsertOne(ctx, visa)
	if err != nil {
		// The saved image has no listing to belong to
		utils.DeleteFileQuietly(imagePath)
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusConflict, models.AdminResponse{
				Success: false,
				Message: "A visa listing for this country already exists",
			})
		}
		vc.logger.Printf("Failed to insert visa: %v", err)
		return c.JSON(http.StatusInternalServerError, models.AdminResponse{
			Success: false,
			Message: "Failed to create visa listing",
		})
	}
	visa.ID = result.InsertedID.(primitive.ObjectID)

	return c.JSON(http.StatusCreated, models.AdminResponse{
		Success: true,
		Message: "Visa listing created successfully",
		Data:    visa,
	})
}

// GetAllVisas lists every visa, alphabetically by country.
func (vc *VisaController) GetAllVisas(c echo.Context) error {
	ctx := c.Request().Context()

	cursor, err := config.GetCollection(vc.DB, "visas").Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "country", Value: 1}}).SetCollation(caseInsensitive))
	if err != nil {
		vc.logger.Printf("Failed to list visas: %v", err)
		return c.JSON(http.StatusInternalServerError, models.AdminResponse{
			Success: false,
			Message: "Failed to fetch visa listings",
		})
	}
	defer cursor.Close(ctx)

	visas := []models.Visa{}
	if err := cursor.All(ctx, &visas); err != nil {
		vc.logger.Printf("Failed to decode visas: %v", err)
		return c.JSON(http.StatusInternalServerError, models.AdminResponse{
			Success: false,
			Message: "Failed to fetch visa listings",
		})
	}

	return c.JSON(http.StatusOK, models.AdminResponse{
		Success: true,
		Data:    visas,
	})
}

// GetVisaByCountry fetches one listing, matching the country case-insensitively.
func (vc *VisaController) GetVisaByCountry(c echo.Context) error {
	ctx := c.Request().Context()
	country := c.Param("country")

	var visa models.Visa
	err := config.GetCollection(vc.DB, "visas").FindOne(ctx, bson.M{"country": country},
		options.FindOne().SetCollation(caseInsensitive)).Decode(&visa)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.AdminResponse{
				Success: false,
				Message: "No visa listing found for this country",
			})
		}
		vc.logger.Printf("Failed to fetch visa: %v", err)
		return c.JSON(http.StatusInternalServerError, models.AdminResponse{
			Success: false,
			Message: "Failed to fetch visa listing",
		})
	}

	return c.JSON(http.StatusOK, models.AdminResponse{
		Success: true,
		Data:    visa,
	})
}

// UpdateVisa edits listing fields; all form fields are optional. A replacement
// cover image removes the previous file after the listing is saved.
func (vc *VisaController) UpdateVisa(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.AdminResponse{
			Success: false,
			Message: "Invalid visa ID",
		})
	}

	visaColl := config.GetCollection(vc.DB, "visas")

	var existing models.Visa
	if err := visaColl.FindOne(ctx, bson.M{"_id": id}).Decode(&existing); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.AdminResponse{
				Success: false,
				Message: "Visa listing not found",
			})
		}
		vc.logger.Printf("Failed to fetch visa: %v", err)
		return c.JSON(http.StatusInternalServerError, models.AdminResponse{
			Success: false,
			Message: "Failed to update visa listing",
		})
	}

	update := bson.M{"updatedAt": time.Now()}

	if country := utils.SanitizeInput(c.FormValue("country")); country != "" {
		// Uniqueness check excludes the document being edited so saving a
		// listing under its own country is not a conflict
		count, err := visaColl.CountDocuments(ctx,
			bson.M{"country": country, "_id": bson.M{"$ne": id}},
			options.Count().SetCollation(caseInsensitive))
		if err != nil {
			vc.logger.Printf("Failed to check country uniqueness: %v", err)
			return c.JSON(http.StatusInternalServerError, models.AdminResponse{
				Success: false,
				Message: "Failed to update visa listing",
			})
		}
		if count > 0 {
			return c.JSON(http.StatusConflict, models.AdminResponse{
				Success: false,
				Message: "A visa listing for this country already exists",
			})
		}
		update["country"] = country
	}
	if duration := utils.SanitizeInput(c.FormValue("duration")); duration != "" {
		update["duration"] = duration
	}
	if description := utils.SanitizeInput(c.FormValue("description")); description != "" {
		update["description"] = description
	}
	if priceStr := c.FormValue("price"); priceStr != "" {
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price < 0 {
			return c.JSON(http.StatusBadRequest, models.AdminResponse{
				Success: false,
				Message: "Price must be a non-negative number",
			})
		}
		update["price"] = price
	}

	oldImagePath := ""
	if file, err := c.FormFile("coverImage"); err == nil {
		if !utils.IsValidImageFile(file) {
			return c.JSON(http.StatusBadRequest, models.AdminResponse{
				Success: false,
				Message: "Cover image must be a jpg, jpeg or png file",
			})
		}
		coverURL, imagePath, err := utils.SaveVisaImage(file)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.AdminResponse{
				Success: false,
				Message: "Failed to process cover image: " + err.Error(),
			})
		}
		update["coverImage"] = coverURL
		update["imagePath"] = imagePath
		oldImagePath = existing.ImagePath
	}

	var updated models.Visa
	err = visaColl.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&updated)
	if err != nil {
		if newPath, ok := update["imagePath"].(string); ok {
			utils.DeleteFileQuietly(newPath)
		}
		vc.logger.Printf("Failed to update visa: %v", err)
		return c.JSON(http.StatusInternalServerError, models.AdminResponse{
			Success: false,
			Message: "Failed to update visa listing",
		})
	}

	// The old file is unreferenced now; failure to remove it only leaks disk
	if oldImagePath != "" {
		utils.DeleteFileQuietly(oldImagePath)
	}

	return c.JSON(http.StatusOK, models.AdminResponse{
		Success: true,
		Message: "Visa listing updated successfully",
		Data:    updated,
	})
}

// DeleteVisa removes a listing and makes one best-effort attempt to remove
// its cover image.
func (vc *VisaController) DeleteVisa(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.AdminResponse{
			Success: false,
			Message: "Invalid visa ID",
		})
	}

	visaColl := config.GetCollection(vc.DB, "visas")

	var visa models.Visa
	if err := visaColl.FindOne(ctx, bson.M{"_id": id}).Decode(&visa); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.AdminResponse{
				Success: false,
				Message: "Visa listing not found",
			})
		}
		vc.logger.Printf("Failed to fetch visa: %v", err)
		return c.JSON(http.StatusInternalServerError, models.AdminResponse{
			Success: false,
			Message: "Failed to delete visa listing",
		})
	}

	if _, err := visaColl.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		vc.logger.Printf("Failed to delete visa: %v", err)
		return c.JSON(http.StatusInternalServerError, models.AdminResponse{
			Success: false,
			Message: "Failed to delete visa listing",
		})
	}

	utils.DeleteFileQuietly(visa.ImagePath)

	return c.JSON(http.StatusOK, models.AdminResponse{
		Success: true,
		Message: "Visa listing deleted successfully",
	})
}
