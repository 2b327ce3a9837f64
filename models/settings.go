// File: models/settings.go
package models

import "time"

// CompanySettingsID is the fixed id of the singleton settings document.
const CompanySettingsID = "company_settings"

// CompanySettings holds payment instructions and tariffs.
type CompanySettings struct {
	ID        string      `bson:"id" json:"id"`
	Payment   PaymentInfo `bson:"payment" json:"payment"`
	Tariffs   Tariffs     `bson:"tariffs" json:"tariffs"`
	UpdatedAt time.Time   `bson:"updatedAt" json:"updatedAt"`
}

type PaymentInfo struct {
	MobilePayment MobilePayment `bson:"mobilePayment" json:"mobilePayment"`
	BankTransfer  BankTransfer  `bson:"bankTransfer" json:"bankTransfer"`
}

type MobilePayment struct {
	Bank       string `bson:"bank" json:"bank"`
	Phone      string `bson:"phone" json:"phone"`
	NationalID string `bson:"nationalId" json:"nationalId"`
}

type BankTransfer struct {
	Bank          string `bson:"bank" json:"bank"`
	AccountNumber string `bson:"accountNumber" json:"accountNumber"`
	AccountHolder string `bson:"accountHolder" json:"accountHolder"`
	NationalID    string `bson:"nationalId" json:"nationalId"`
}

// Tariffs are hourly rates in the base currency plus the local exchange rate.
// LegacyRate is the pre day/night single rate still found in old documents.
type Tariffs struct {
	DayRate      float64  `bson:"dayRate" json:"dayRate"`
	NightRate    float64  `bson:"nightRate" json:"nightRate"`
	ExchangeRate float64  `bson:"exchangeRate" json:"exchangeRate"`
	NightStart   string   `bson:"nightStart" json:"nightStart"`
	NightEnd     string   `bson:"nightEnd" json:"nightEnd"`
	LegacyRate   *float64 `bson:"pricePerHour,omitempty" json:"-"`
}

// SettingsInput is the admin form. Tariff values may arrive as numbers or numeric strings.
type SettingsInput struct {
	Payment *PaymentInfo `json:"payment"`
	Tariffs *TariffInput `json:"tariffs"`
}

type TariffInput struct {
	DayRate      any    `json:"dayRate"`
	NightRate    any    `json:"nightRate"`
	ExchangeRate any    `json:"exchangeRate"`
	NightStart   string `json:"nightStart"`
	NightEnd     string `json:"nightEnd"`
}
