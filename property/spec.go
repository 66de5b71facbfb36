package property

// Kind mirrors the MQTT fixed-header packet type nibble. It is duplicated
// here (rather than imported from package packet) so that property has no
// dependency on packet; packet depends on property, not the other way
// around.
type Kind byte

const (
	KindConnect     Kind = 1
	KindConnack     Kind = 2
	KindPublish     Kind = 3
	KindPuback      Kind = 4
	KindPubrec      Kind = 5
	KindPubrel      Kind = 6
	KindPubcomp     Kind = 7
	KindSubscribe   Kind = 8
	KindSuback      Kind = 9
	KindUnsubscribe Kind = 10
	KindUnsuback    Kind = 11
	KindDisconnect  Kind = 14
	KindAuth        Kind = 15
)

// kindSet is a small bitset of Kind values, indexed by Kind (1..15).
type kindSet uint16

func kinds(ks ...Kind) kindSet {
	var s kindSet
	for _, k := range ks {
		s |= 1 << uint(k)
	}
	return s
}

func (s kindSet) has(k Kind) bool {
	return s&(1<<uint(k)) != 0
}

// spec describes one property's type, multiplicity, and packet-kind
// admissibility, per MQTT 5.0 section 2.2.2.2's property tables.
type spec struct {
	Type     Type
	Multiple bool
	Kinds    kindSet
}

var specs = map[ID]spec{
	PayloadFormatIndicator: {TypeByte, false, kinds(KindPublish)},
	MessageExpiryInterval:  {TypeFourByteInt, false, kinds(KindPublish)},
	ContentType:            {TypeUTF8String, false, kinds(KindPublish)},
	ResponseTopic:          {TypeUTF8String, false, kinds(KindPublish)},
	CorrelationData:        {TypeBinaryData, false, kinds(KindPublish)},
	SubscriptionIdentifier: {TypeVarInt, true, kinds(KindPublish, KindSubscribe)},
	SessionExpiryInterval:  {TypeFourByteInt, false, kinds(KindConnect, KindConnack, KindDisconnect)},
	AssignedClientIdentifier: {TypeUTF8String, false, kinds(KindConnack)},
	ServerKeepAlive:           {TypeTwoByteInt, false, kinds(KindConnack)},
	AuthenticationMethod:      {TypeUTF8String, false, kinds(KindConnect, KindConnack, KindAuth)},
	AuthenticationData:        {TypeBinaryData, false, kinds(KindConnect, KindConnack, KindAuth)},
	RequestProblemInformation: {TypeByte, false, kinds(KindConnect)},
	WillDelayInterval:         {TypeFourByteInt, false, kinds(KindConnect)},
	RequestResponseInformation: {TypeByte, false, kinds(KindConnect)},
	ResponseInformation:        {TypeUTF8String, false, kinds(KindConnack)},
	ServerReference:            {TypeUTF8String, false, kinds(KindConnack, KindDisconnect)},
	ReasonString: {TypeUTF8String, false, kinds(
		KindConnack, KindPuback, KindPubrec, KindPubrel, KindPubcomp,
		KindSuback, KindUnsuback, KindDisconnect, KindAuth,
	)},
	ReceiveMaximum:     {TypeTwoByteInt, false, kinds(KindConnect, KindConnack)},
	TopicAliasMaximum:  {TypeTwoByteInt, false, kinds(KindConnect, KindConnack)},
	TopicAlias:         {TypeTwoByteInt, false, kinds(KindPublish)},
	MaximumQoS:         {TypeByte, false, kinds(KindConnack)},
	RetainAvailable:    {TypeByte, false, kinds(KindConnack)},
	UserProperty: {TypeUTF8Pair, true, kinds(
		KindConnect, KindConnack, KindPublish, KindPuback, KindPubrec, KindPubrel,
		KindPubcomp, KindSubscribe, KindSuback, KindUnsubscribe, KindUnsuback,
		KindDisconnect, KindAuth,
	)},
	MaximumPacketSize:               {TypeFourByteInt, false, kinds(KindConnect, KindConnack)},
	WildcardSubscriptionAvailable:   {TypeByte, false, kinds(KindConnack)},
	SubscriptionIdentifierAvailable: {TypeByte, false, kinds(KindConnack)},
	SharedSubscriptionAvailable:     {TypeByte, false, kinds(KindConnack)},
}
