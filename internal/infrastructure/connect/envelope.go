// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package connect

import (
	"encoding/xml"
	"strings"

	"github.com/uninett/connect-import-service/internal/domain/models"
)

// Status codes reported by Connect in <status code="...">.
const (
	StatusOK     = "ok"
	StatusNoData = "no-data"
)

// Response is the <results> envelope returned by every Connect action.
// Repeated elements always decode into slices, so callers never need to care
// whether Connect returned one item or many.
type Response struct {
	XMLName       xml.Name       `xml:"results"`
	Status        Status         `xml:"status"`
	Common        *Common        `xml:"common"`
	SearchResults []scoElement   `xml:"sco-search-by-field-info>sco"`
	ExpandedScos  []scoElement   `xml:"expanded-scos>sco"`
	Sco           *scoElement    `xml:"sco"`
	Principals    []principalElt `xml:"principal-list>principal"`
	Principal     *principalElt  `xml:"principal"`
}

// Status is the <status> element of a response.
type Status struct {
	Code        string   `xml:"code,attr"`
	SubcodeAttr string   `xml:"subcode,attr"`
	Invalid     *Invalid `xml:"invalid"`
}

// Invalid describes the offending field of a status with code "invalid".
type Invalid struct {
	Field   string `xml:"field,attr"`
	Type    string `xml:"type,attr"`
	Subcode string `xml:"subcode,attr"`
}

// OK reports whether the status code is "ok".
func (s Status) OK() bool {
	return strings.EqualFold(s.Code, StatusOK)
}

// Subcode returns the most specific reason Connect gave for a non-ok status,
// falling back to the status code itself.
func (s Status) Subcode() string {
	if s.SubcodeAttr != "" {
		return s.SubcodeAttr
	}
	if s.Invalid != nil && s.Invalid.Subcode != "" {
		if s.Invalid.Field != "" {
			return s.Invalid.Subcode + " (" + s.Invalid.Field + ")"
		}
		return s.Invalid.Subcode
	}
	return s.Code
}

// sessionRejected reports a no-access/no-login status, which Connect returns
// for unknown or expired session tokens.
func (s Status) sessionRejected() bool {
	return strings.EqualFold(s.Code, "no-access") && strings.EqualFold(s.SubcodeAttr, "no-login")
}

// Common is the <common> element of common-info.
type Common struct {
	Version string `xml:"version"`
	Host    string `xml:"host"`
}

type scoElement struct {
	ID          string `xml:"sco-id,attr"`
	FolderID    string `xml:"folder-id,attr"`
	Type        string `xml:"type,attr"`
	Depth       int    `xml:"depth,attr"`
	Name        string `xml:"name"`
	Description string `xml:"description"`
	URLPath     string `xml:"url-path"`
}

func (s scoElement) toModel() models.Sco {
	return models.Sco{
		ID:          s.ID,
		FolderID:    s.FolderID,
		Type:        s.Type,
		Name:        s.Name,
		Description: s.Description,
		URLPath:     s.URLPath,
		Depth:       s.Depth,
	}
}

func scosToModels(elements []scoElement) []models.Sco {
	scos := make([]models.Sco, 0, len(elements))
	for _, e := range elements {
		scos = append(scos, e.toModel())
	}
	return scos
}

type principalElt struct {
	ID        string `xml:"principal-id,attr"`
	Login     string `xml:"login"`
	Name      string `xml:"name"`
	FirstName string `xml:"first-name"`
	LastName  string `xml:"last-name"`
}

func (p principalElt) toModel() models.Principal {
	return models.Principal{
		ID:        p.ID,
		Login:     p.Login,
		FirstName: p.FirstName,
		LastName:  p.LastName,
	}
}

// parseResponse decodes a <results> envelope.
func parseResponse(body []byte) (*Response, error) {
	var resp Response
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
