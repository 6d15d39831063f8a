package app

// CreateJobRequest opens a job at intake. Total is a decimal string; QuoteID
// is set when the job comes out of an accepted quote.
type CreateJobRequest struct {
	CompanyCode      string
	QuoteID          *int
	Description      string
	Quantity         int
	CustomerTotal    string
	CustomerPONumber string
}

type CreateQuoteRequest struct {
	CompanyCode string
	Description string
	Quantity    int
}

type RecordShipmentRequest struct {
	JobRef         string
	Carrier        string
	TrackingNumber string
}

// PaperMovementRequest covers all stock movements. Quantity is a decimal
// string; JobID is only set for job deductions.
type PaperMovementRequest struct {
	CompanyCode string
	RollType    string
	Quantity    string
	Note        string
	JobID       int
}
