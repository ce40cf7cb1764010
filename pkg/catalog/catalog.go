// Package catalog declares a small, illustrative set of SMPP v5.0 PDU
// shapes as descriptor.Descriptor values. It is deliberately not a
// complete PDU catalog — command IDs, status codes and field widths are
// grounded on the same constants a full catalog would use, but only
// enough PDUs are declared here to exercise the descriptor engine end to
// end (bind_transceiver, submit_sm, enquire_link, generic_nack and their
// responses) and to give pkg/registry and cmd/smppcodec real fixtures to
// decode and encode.
package catalog

import (
	"encoding/binary"

	"github.com/oarkflow/smpp-codec/pkg/descriptor"
)

// Command IDs, mirrored from the base SMPP command-ID space.
const (
	CommandBindTransceiver     uint32 = 0x00000009
	CommandBindTransceiverResp uint32 = 0x80000009
	CommandSubmitSM            uint32 = 0x00000004
	CommandSubmitSMResp        uint32 = 0x80000004
	CommandEnquireLink         uint32 = 0x00000015
	CommandEnquireLinkResp     uint32 = 0x80000015
	CommandGenericNack         uint32 = 0x80000000
)

// Maximum field lengths from the base SMPP syntax; one more than the
// longest accepted payload to leave room for the terminating NUL.
const (
	MaxSystemIDLength     = 16
	MaxPasswordLength     = 9
	MaxSystemTypeLength   = 13
	MaxAddrRangeLength    = 41
	MaxServiceTypeLength  = 6
	MaxAddressLength      = 21
	MaxMessageIDLength    = 65
	MaxShortMessageLength = 255
)

func commandIDConstant(id uint32) descriptor.Constant {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, id)
	return descriptor.NewConstant(b)
}

// header is the four-field PDU envelope common to every PDU: command
// length, a command-id anchor (supplied per-PDU by the caller), command
// status, and sequence number. commandID disambiguates Union branches in
// PDU, matching how a real catalog would anchor each command's shape.
func header(commandID uint32) []descriptor.Descriptor {
	return []descriptor.Descriptor{
		descriptor.NewInteger(4, 0, 1<<32-1),
		commandIDConstant(commandID),
		descriptor.NewInteger(4, 0, 1<<32-1),
		descriptor.NewInteger(4, 0, 1<<32-1),
	}
}

// BindTransceiver describes bind_transceiver: header followed by
// system_id, password, system_type, interface_version, addr_ton,
// addr_npi and address_range.
var BindTransceiver = descriptor.NewNamedComposite("bind_transceiver",
	append(header(CommandBindTransceiver),
		descriptor.NewCString(false, MaxSystemIDLength, descriptor.FormatFree),
		descriptor.NewCString(false, MaxPasswordLength, descriptor.FormatFree),
		descriptor.NewCString(false, MaxSystemTypeLength, descriptor.FormatFree),
		descriptor.NewInteger(1, 0, 0x50),
		descriptor.NewInteger(1, 0, 6),
		descriptor.NewInteger(1, 0, 18),
		descriptor.NewCString(false, MaxAddrRangeLength, descriptor.FormatFree),
	)...,
)

// BindTransceiverResp describes bind_transceiver_resp: header followed by
// system_id.
var BindTransceiverResp = descriptor.NewNamedComposite("bind_transceiver_resp",
	append(header(CommandBindTransceiverResp),
		descriptor.NewCString(false, MaxSystemIDLength, descriptor.FormatFree),
	)...,
)

// SubmitSM describes submit_sm: header followed by the mandatory fields
// up to and including short_message, with short_message_length
// expressed as the Integer length octet it is on the wire and
// short_message itself bounded by the same size in the packing layer
// (the descriptor language has no dependent-length primitive; a real
// catalog would refine this with a TLV-aware wrapper, out of scope here).
var SubmitSM = descriptor.NewNamedComposite("submit_sm",
	append(header(CommandSubmitSM),
		descriptor.NewCString(false, MaxServiceTypeLength, descriptor.FormatFree),
		descriptor.NewInteger(1, 0, 6),
		descriptor.NewInteger(1, 0, 18),
		descriptor.NewCString(false, MaxAddressLength, descriptor.FormatFree),
		descriptor.NewInteger(1, 0, 6),
		descriptor.NewInteger(1, 0, 18),
		descriptor.NewCString(false, MaxAddressLength, descriptor.FormatFree),
		descriptor.NewInteger(1, 0, 255),
		descriptor.NewInteger(1, 0, 255),
		descriptor.NewInteger(1, 0, 3),
		descriptor.NewCString(false, 17, descriptor.FormatFree),
		descriptor.NewCString(false, 17, descriptor.FormatFree),
		descriptor.NewInteger(1, 0, 3),
		descriptor.NewInteger(1, 0, 1),
		descriptor.NewInteger(1, 0, 255),
		descriptor.NewInteger(1, 0, 255),
		descriptor.NewInteger(1, 0, MaxShortMessageLength-1),
		descriptor.NewOctetString(false, MaxShortMessageLength-1, descriptor.FormatFree),
	)...,
)

// SubmitSMResp describes submit_sm_resp: header followed by message_id.
var SubmitSMResp = descriptor.NewNamedComposite("submit_sm_resp",
	append(header(CommandSubmitSMResp),
		descriptor.NewCString(false, MaxMessageIDLength, descriptor.FormatFree),
	)...,
)

// EnquireLink describes enquire_link: header only, no body.
var EnquireLink = descriptor.NewNamedComposite("enquire_link", header(CommandEnquireLink)...)

// EnquireLinkResp describes enquire_link_resp: header only, no body.
var EnquireLinkResp = descriptor.NewNamedComposite("enquire_link_resp", header(CommandEnquireLinkResp)...)

// GenericNack describes generic_nack: header only, no body. It is the
// catch-all response to any PDU the peer could not otherwise process,
// carrying the rejection in command_status.
var GenericNack = descriptor.NewNamedComposite("generic_nack", header(CommandGenericNack)...)

// PDU is the top-level union over every PDU shape this catalog declares.
// Decode tries each branch on the original bytes and keeps the first
// match; on total failure the highest-priority branch error names the
// field that most plausibly caused rejection, per the engine's error
// ranking.
var PDU = descriptor.NewUnion(
	BindTransceiver,
	BindTransceiverResp,
	SubmitSM,
	SubmitSMResp,
	EnquireLink,
	EnquireLinkResp,
	GenericNack,
)

// ByName indexes the catalog's declared PDUs by their composite tag, for
// callers (such as pkg/registry) that look a descriptor up by name rather
// than walking the PDU union.
var ByName = map[string]descriptor.Descriptor{
	"bind_transceiver":      BindTransceiver,
	"bind_transceiver_resp": BindTransceiverResp,
	"submit_sm":             SubmitSM,
	"submit_sm_resp":        SubmitSMResp,
	"enquire_link":          EnquireLink,
	"enquire_link_resp":     EnquireLinkResp,
	"generic_nack":          GenericNack,
}
