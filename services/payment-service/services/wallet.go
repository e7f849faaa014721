package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Field names shared by the JazzCash and Easypaisa hosted checkout pages.
const (
	FieldMerchantID      = "pp_MerchantID"
	FieldTxnRefNo        = "pp_TxnRefNo"
	FieldAmount          = "pp_Amount"
	FieldCurrency        = "pp_TxnCurrency"
	FieldTxnDateTime     = "pp_TxnDateTime"
	FieldBillReference   = "pp_BillReference"
	FieldReturnURL       = "pp_ReturnURL"
	FieldSecureHash      = "pp_SecureHash"
	FieldResponseCode    = "pp_ResponseCode"
	FieldResponseMessage = "pp_ResponseMessage"
)

// WalletSuccessCode is the gateway response code for a paid transaction.
const WalletSuccessCode = "000"

type WalletProvider struct {
	Name       string
	BaseURL    string
	MerchantID string
	Salt       string
}

func (w WalletProvider) Enabled() bool {
	return w.BaseURL != "" && w.MerchantID != "" && w.Salt != ""
}

// RedirectURL builds the signed gateway URL the customer is sent to.
func (w WalletProvider) RedirectURL(ref, orderNumber string, amountMinor int64, currency, postbackURL string, now time.Time) string {
	fields := map[string]string{
		FieldMerchantID:    w.MerchantID,
		FieldTxnRefNo:      ref,
		FieldAmount:        strconv.FormatInt(amountMinor, 10),
		FieldCurrency:      strings.ToUpper(currency),
		FieldTxnDateTime:   now.Format("20060102150405"),
		FieldBillReference: orderNumber,
		FieldReturnURL:     postbackURL,
	}
	fields[FieldSecureHash] = w.Sign(fields)

	q := url.Values{}
	for k, v := range fields {
		q.Set(k, v)
	}
	return w.BaseURL + "?" + q.Encode()
}

// Sign computes the secure hash: HMAC-SHA256 keyed with the salt over the
// salt and every non-empty pp_ value, ordered by field name and joined
// with "&", hex encoded in upper case.
func (w WalletProvider) Sign(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if k == FieldSecureHash || v == "" || !strings.HasPrefix(k, "pp_") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+1)
	parts = append(parts, w.Salt)
	for _, k := range keys {
		parts = append(parts, fields[k])
	}
	mac := hmac.New(sha256.New, []byte(w.Salt))
	mac.Write([]byte(strings.Join(parts, "&")))
	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}

func (w WalletProvider) Verify(fields map[string]string) bool {
	got := strings.ToUpper(fields[FieldSecureHash])
	if got == "" {
		return false
	}
	return hmac.Equal([]byte(got), []byte(w.Sign(fields)))
}

// NewTxnRef returns a gateway transaction reference, unique per attempt.
func NewTxnRef(now time.Time) string {
	return "T" + now.UTC().Format("20060102150405") + strings.ToUpper(uuid.NewString()[:6])
}
