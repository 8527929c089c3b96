package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	config "github.com/njorogedev/estate_hub/configs"
	"github.com/njorogedev/estate_hub/database"
	"github.com/njorogedev/estate_hub/models"
)

// GenerateVisitReceipt renders a PDF receipt for a completed, paid visit and
// stores the Cloudinary URL on the booking. Runs in the background after a
// completion; failures are logged, never surfaced to the transition that
// triggered them.
func GenerateVisitReceipt(booking models.Booking) {
	if booking.Status != models.BookingCompleted || booking.PaymentStatus != models.PaymentPaid {
		return
	}
	if booking.ReceiptURL != nil {
		return
	}

	var full models.Booking
	if err := database.DB.Preload("User").Preload("Property").First(&full, "id = ?", booking.ID).Error; err != nil {
		log.Printf("🔥 Failed to load booking %s for receipt: %v", booking.ID, err)
		return
	}

	htmlData, err := renderReceiptHTML(&full)
	if err != nil {
		log.Printf("🔥 Failed to render receipt HTML: %v", err)
		return
	}

	pdfBytes, err := printPDFFromHTML(htmlData)
	if err != nil {
		log.Printf("🔥 Failed to generate receipt PDF: %v", err)
		return
	}

	uploadURL, err := uploadReceipt(pdfBytes, full.ID.String())
	if err != nil {
		log.Printf("🔥 Failed to upload receipt to Cloudinary: %v", err)
		return
	}

	if err := database.DB.Model(&models.Booking{}).Where("id = ?", full.ID).
		Update("receipt_url", uploadURL).Error; err != nil {
		log.Printf("🔥 Failed to save receipt URL for booking %s: %v", full.ID, err)
		return
	}
	log.Printf("✅ Generated visit receipt for booking %s", full.ID)
}

func renderReceiptHTML(booking *models.Booking) (string, error) {
	tmpl, err := template.ParseFiles("templates/receipt.html")
	if err != nil {
		return "", err
	}

	reference := "N/A"
	if booking.PaymentReference != nil {
		reference = *booking.PaymentReference
	}

	data := struct {
		VisitorName   string
		PropertyTitle string
		PropertyCity  string
		VisitDate     string
		VisitTime     string
		Amount        string
		Method        string
		Reference     string
		IssuedOn      string
	}{
		VisitorName:   booking.User.FullName,
		PropertyTitle: booking.Property.Title,
		PropertyCity:  booking.Property.City,
		VisitDate:     booking.VisitDate,
		VisitTime:     booking.VisitTime,
		Amount:        fmt.Sprintf("%.2f %s", booking.Amount, booking.Currency),
		Method:        booking.PaymentMethod,
		Reference:     reference,
		IssuedOn:      time.Now().UTC().Format("January 2, 2006"),
	}

	var rendered bytes.Buffer
	if err := tmpl.Execute(&rendered, data); err != nil {
		return "", err
	}
	return rendered.String(), nil
}

func printPDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadReceipt(fileBytes []byte, bookingID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("receipts/%s_%s", bookingID, uuid.New().String()),
		Folder:       "estate_hub_receipts",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}
	return uploadResult.SecureURL, nil
}
