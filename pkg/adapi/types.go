/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package adapi

// Statistics are the engagement counters attached to an ad.
type Statistics struct {
	Contacts  int `json:"contacts"`
	Likes     int `json:"likes"`
	ViewCount int `json:"viewCount"`
}

// AdCreateRequest is the body accepted by the create ad endpoint.
// Note the service spells the seller field "sellerID" on input and
// "sellerId" on output.
type AdCreateRequest struct {
	SellerID   int         `json:"sellerID"`
	Name       string      `json:"name"`
	Price      int         `json:"price"`
	Statistics *Statistics `json:"statistics,omitempty"`
}

// AdRecord is an ad as returned by the service.
type AdRecord struct {
	ID         string     `json:"id"`
	SellerID   int        `json:"sellerId"`
	Name       string     `json:"name"`
	Price      int        `json:"price"`
	Statistics Statistics `json:"statistics"`
	CreatedAt  string     `json:"createdAt"`
}

// PostAck acknowledges a created ad.
type PostAck struct {
	Status string `json:"status"`
}

// ErrorResult is the payload of an ErrorEnvelope.
type ErrorResult struct {
	Message  string         `json:"message"`
	Messages map[string]any `json:"messages"`
}

// ErrorEnvelope is returned on 400 class responses.
type ErrorEnvelope struct {
	Result ErrorResult `json:"result"`
	Status string      `json:"status"`
}

// NotFound is returned when an identifier is well formed but unknown.
type NotFound struct {
	Error string `json:"error"`
}
