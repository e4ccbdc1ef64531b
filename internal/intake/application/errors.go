package application

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies submission failures.
type ErrorKind string

const (
	KindConfiguration       ErrorKind = "configuration"
	KindUnsupportedDocument ErrorKind = "unsupported_document"
	KindUpstream            ErrorKind = "upstream"
)

const (
	unsupportedDocumentMarker = "not supported for this document"

	unsupportedDocumentMessage = "The configured spreadsheet is not a native Google Sheets document, so rows cannot be appended to it."
	unsupportedDocumentHint    = "The file looks like an uploaded Excel (.xlsx) or CSV document. To fix it: " +
		"1) open the file in Google Drive, " +
		"2) choose File > Save as Google Sheets, " +
		"3) share the new spreadsheet with the service account email, " +
		"4) set GOOGLE_SHEET_ID to the ID in the new spreadsheet's URL."
)

// SubmissionError is the structured failure returned by SubmissionService.
type SubmissionError struct {
	Kind           ErrorKind
	Message        string
	HelpfulMessage string
	Status         int
	Details        any
	Err            error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

func configurationError(message string) *SubmissionError {
	return &SubmissionError{Kind: KindConfiguration, Message: message}
}

// ClassifyUpstreamError は外部サービスのエラーを「非対応ドキュメント形式」と「その他」に振り分ける。
// 判定はメッセージの部分一致か 400 のステータスコードによるヒューリスティック。
func ClassifyUpstreamError(err error) *SubmissionError {
	if err == nil {
		return nil
	}
	var existing *SubmissionError
	if errors.As(err, &existing) {
		return existing
	}

	out := &SubmissionError{Kind: KindUpstream, Message: err.Error(), Err: err}
	var upstream UpstreamError
	if errors.As(err, &upstream) {
		out.Status = upstream.UpstreamStatus()
		out.Details = upstream.UpstreamDetails()
	}

	if strings.Contains(strings.ToLower(err.Error()), unsupportedDocumentMarker) || out.Status == 400 {
		out.Kind = KindUnsupportedDocument
		out.Message = unsupportedDocumentMessage
		out.HelpfulMessage = unsupportedDocumentHint
	}
	return out
}
