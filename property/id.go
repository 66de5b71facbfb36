// Package property implements MQTT 5.0 properties: the typed, tagged
// key/value pairs attached to CONNECT, CONNACK, PUBLISH, and the
// acknowledgement packets. It enforces per-packet-kind admissibility and
// singleton/repeatable multiplicity at both build and parse time.
package property

// ID identifies an MQTT 5.0 property.
type ID byte

const (
	PayloadFormatIndicator          ID = 0x01
	MessageExpiryInterval           ID = 0x02
	ContentType                     ID = 0x03
	ResponseTopic                   ID = 0x08
	CorrelationData                 ID = 0x09
	SubscriptionIdentifier          ID = 0x0B
	SessionExpiryInterval           ID = 0x11
	AssignedClientIdentifier        ID = 0x12
	ServerKeepAlive                 ID = 0x13
	AuthenticationMethod            ID = 0x15
	AuthenticationData              ID = 0x16
	RequestProblemInformation       ID = 0x17
	WillDelayInterval               ID = 0x18
	RequestResponseInformation      ID = 0x19
	ResponseInformation             ID = 0x1A
	ServerReference                 ID = 0x1C
	ReasonString                    ID = 0x1F
	ReceiveMaximum                  ID = 0x21
	TopicAliasMaximum               ID = 0x22
	TopicAlias                      ID = 0x23
	MaximumQoS                      ID = 0x24
	RetainAvailable                 ID = 0x25
	UserProperty                    ID = 0x26
	MaximumPacketSize               ID = 0x27
	WildcardSubscriptionAvailable   ID = 0x28
	SubscriptionIdentifierAvailable ID = 0x29
	SharedSubscriptionAvailable     ID = 0x2A
)

// Type identifies the wire encoding of a property value.
type Type byte

const (
	TypeByte        Type = 1
	TypeTwoByteInt  Type = 2
	TypeFourByteInt Type = 3
	TypeVarInt      Type = 4
	TypeUTF8String  Type = 5
	TypeUTF8Pair    Type = 6
	TypeBinaryData  Type = 7
)

func (id ID) String() string {
	if name, ok := idNames[id]; ok {
		return name
	}
	return "UNKNOWN"
}

var idNames = map[ID]string{
	PayloadFormatIndicator:          "PayloadFormatIndicator",
	MessageExpiryInterval:           "MessageExpiryInterval",
	ContentType:                     "ContentType",
	ResponseTopic:                   "ResponseTopic",
	CorrelationData:                 "CorrelationData",
	SubscriptionIdentifier:          "SubscriptionIdentifier",
	SessionExpiryInterval:           "SessionExpiryInterval",
	AssignedClientIdentifier:        "AssignedClientIdentifier",
	ServerKeepAlive:                 "ServerKeepAlive",
	AuthenticationMethod:            "AuthenticationMethod",
	AuthenticationData:              "AuthenticationData",
	RequestProblemInformation:       "RequestProblemInformation",
	WillDelayInterval:               "WillDelayInterval",
	RequestResponseInformation:      "RequestResponseInformation",
	ResponseInformation:             "ResponseInformation",
	ServerReference:                 "ServerReference",
	ReasonString:                    "ReasonString",
	ReceiveMaximum:                  "ReceiveMaximum",
	TopicAliasMaximum:               "TopicAliasMaximum",
	TopicAlias:                      "TopicAlias",
	MaximumQoS:                      "MaximumQoS",
	RetainAvailable:                 "RetainAvailable",
	UserProperty:                    "UserProperty",
	MaximumPacketSize:               "MaximumPacketSize",
	WildcardSubscriptionAvailable:   "WildcardSubscriptionAvailable",
	SubscriptionIdentifierAvailable: "SubscriptionIdentifierAvailable",
	SharedSubscriptionAvailable:     "SharedSubscriptionAvailable",
}
