package models

// Address is a postal address value object shared by applicant and business.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Applicant is the natural person behind a case.
type Applicant struct {
	FirstName      string  `json:"firstName"`
	MiddleName     string  `json:"middleName,omitempty"`
	LastName       string  `json:"lastName"`
	DateOfBirth    string  `json:"dateOfBirth,omitempty"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone,omitempty"`
	Address        Address `json:"address"`
	Nationality    string  `json:"nationality,omitempty"`
	TaxID          string  `json:"taxId,omitempty"`
	PassportNumber string  `json:"passportNumber,omitempty"`
}

// Business is the optional corporate entity behind a non-individual case.
type Business struct {
	LegalName           string  `json:"legalName"`
	RegistrationNumber  string  `json:"registrationNumber,omitempty"`
	RegistrationCountry string  `json:"registrationCountry,omitempty"`
	Address             Address `json:"address"`
}
