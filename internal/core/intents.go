package core

// Intent is a tag from the closed, versioned task taxonomy. The zero value
// is not valid; unknown strings coming back from the remote classifier are
// coerced to IntentChat at the adapter boundary.
type Intent string

const (
	IntentChat    Intent = "chat"
	IntentHelp    Intent = "help"
	IntentClarify Intent = "clarify"

	IntentWeather         Intent = "weather"
	IntentWeatherForecast Intent = "weather_forecast"
	IntentAirQuality      Intent = "air_quality"

	IntentTrainStatus          Intent = "train_status"
	IntentTrainJourney         Intent = "train_journey"
	IntentTrainBetweenStations Intent = "train_between_stations"
	IntentPNRStatus            Intent = "pnr_status"
	IntentSeatAvailability     Intent = "seat_availability"
	IntentPlatformEnquiry      Intent = "platform_enquiry"
	IntentFlightStatus         Intent = "flight_status"
	IntentBusRoute             Intent = "bus_route"
	IntentMetroRoute           Intent = "metro_route"

	IntentLocalSearch      Intent = "local_search"
	IntentFoodSearch       Intent = "food_search"
	IntentRestaurantSearch Intent = "restaurant_search"
	IntentEventsNearby     Intent = "events_nearby"
	IntentMoviesNearby     Intent = "movies_nearby"
	IntentNearbyATM        Intent = "nearby_atm"
	IntentNearbyHospital   Intent = "nearby_hospital"

	IntentNews         Intent = "news"
	IntentCricketScore Intent = "cricket_score"
	IntentSportsNews   Intent = "sports_news"

	IntentGetHoroscope Intent = "get_horoscope"
	IntentPanchang     Intent = "panchang"
	IntentFestivalInfo Intent = "festival_info"

	IntentReminderSet  Intent = "reminder_set"
	IntentReminderList Intent = "reminder_list"
	IntentAlarmSet     Intent = "alarm_set"

	IntentTranslate     Intent = "translate"
	IntentDictionary    Intent = "dictionary"
	IntentJoke          Intent = "joke"
	IntentShayari       Intent = "shayari"
	IntentQuote         Intent = "quote"
	IntentImageGenerate Intent = "image_generate"

	IntentCurrencyConvert Intent = "currency_convert"
	IntentGoldPrice       Intent = "gold_price"
	IntentFuelPrice       Intent = "fuel_price"

	IntentPinCode        Intent = "pin_code"
	IntentIFSCLookup     Intent = "ifsc_lookup"
	IntentPANStatus      Intent = "pan_status"
	IntentPassportStatus Intent = "passport_status"

	IntentDistance Intent = "distance"
)

// AllIntents is the closed vocabulary, in taxonomy order.
var AllIntents = []Intent{
	IntentChat, IntentHelp, IntentClarify,
	IntentWeather, IntentWeatherForecast, IntentAirQuality,
	IntentTrainStatus, IntentTrainJourney, IntentTrainBetweenStations,
	IntentPNRStatus, IntentSeatAvailability, IntentPlatformEnquiry,
	IntentFlightStatus, IntentBusRoute, IntentMetroRoute,
	IntentLocalSearch, IntentFoodSearch, IntentRestaurantSearch,
	IntentEventsNearby, IntentMoviesNearby, IntentNearbyATM, IntentNearbyHospital,
	IntentNews, IntentCricketScore, IntentSportsNews,
	IntentGetHoroscope, IntentPanchang, IntentFestivalInfo,
	IntentReminderSet, IntentReminderList, IntentAlarmSet,
	IntentTranslate, IntentDictionary, IntentJoke, IntentShayari, IntentQuote,
	IntentImageGenerate,
	IntentCurrencyConvert, IntentGoldPrice, IntentFuelPrice,
	IntentPinCode, IntentIFSCLookup, IntentPANStatus, IntentPassportStatus,
	IntentDistance,
}

var intentSet = func() map[Intent]struct{} {
	s := make(map[Intent]struct{}, len(AllIntents))
	for _, it := range AllIntents {
		s[it] = struct{}{}
	}
	return s
}()

// Valid reports whether i belongs to the closed taxonomy.
func (i Intent) Valid() bool {
	_, ok := intentSet[i]
	return ok
}

func (i Intent) String() string { return string(i) }

// ParseIntent maps a raw tag to the taxonomy; ok is false for anything
// outside the closed vocabulary.
func ParseIntent(s string) (Intent, bool) {
	it := Intent(s)
	if it.Valid() {
		return it, true
	}
	return IntentChat, false
}

// entitySchemas declares the allowed entity keys per intent. The orchestrator
// drops keys outside the schema at its boundary. Intents absent from this map
// accept the common keys only.
var entitySchemas = map[Intent][]string{
	IntentWeather:              {"city", "date"},
	IntentWeatherForecast:      {"city", "date", "days"},
	IntentAirQuality:           {"city"},
	IntentTrainStatus:          {"train_number", "date"},
	IntentTrainJourney:         {"source_city", "destination_city", "date", "road_trip", "travel_mode"},
	IntentTrainBetweenStations: {"source_city", "destination_city", "date"},
	IntentPNRStatus:            {"pnr_number"},
	IntentSeatAvailability:     {"train_number", "date", "travel_class"},
	IntentPlatformEnquiry:      {"train_number", "station"},
	IntentFlightStatus:         {"flight_number", "date"},
	IntentBusRoute:             {"source_city", "destination_city"},
	IntentMetroRoute:           {"source_city", "destination_city", "city"},
	IntentLocalSearch:          {"search_query", "city", "near_me"},
	IntentFoodSearch:           {"search_query", "city", "near_me", "cuisine"},
	IntentRestaurantSearch:     {"search_query", "city", "near_me", "cuisine"},
	IntentEventsNearby:         {"search_query", "city", "date", "near_me"},
	IntentMoviesNearby:         {"search_query", "city", "near_me"},
	IntentNearbyATM:            {"city", "near_me", "bank"},
	IntentNearbyHospital:       {"city", "near_me", "search_query"},
	IntentNews:                 {"topic", "city"},
	IntentCricketScore:         {"team", "match"},
	IntentSportsNews:           {"sport", "team"},
	IntentGetHoroscope:         {"sign", "date"},
	IntentPanchang:             {"date", "city"},
	IntentFestivalInfo:         {"festival", "date"},
	IntentReminderSet:          {"reminder_text", "date", "time"},
	IntentReminderList:         {},
	IntentAlarmSet:             {"time", "date"},
	IntentTranslate:            {"term", "target_language"},
	IntentDictionary:           {"term"},
	IntentImageGenerate:        {"prompt"},
	IntentCurrencyConvert:      {"amount", "currency_from", "currency_to"},
	IntentGoldPrice:            {"city"},
	IntentFuelPrice:            {"city", "fuel_type"},
	IntentPinCode:              {"pin_code", "city", "area"},
	IntentIFSCLookup:           {"ifsc_code", "bank", "branch"},
	IntentPANStatus:            {"pan_number"},
	IntentPassportStatus:       {"file_number"},
	IntentDistance:             {"source_city", "destination_city"},
	IntentClarify:              {"candidates", "search_query"},
}

// commonEntityKeys are valid for every intent.
var commonEntityKeys = map[string]struct{}{
	"lat": {}, "lon": {}, "raw_text": {}, "pending_intent": {},
}

// ValidateEntities filters entities down to the keys the intent's schema
// declares, returning the filtered map and the dropped key names.
func ValidateEntities(intent Intent, entities Entities) (Entities, []string) {
	if len(entities) == 0 {
		return Entities{}, nil
	}
	schema, ok := entitySchemas[intent]
	if !ok {
		// chat/help and friends: keep common keys only.
		schema = nil
	}
	allowed := make(map[string]struct{}, len(schema))
	for _, k := range schema {
		allowed[k] = struct{}{}
	}

	out := make(Entities, len(entities))
	var dropped []string
	for k, v := range entities {
		if _, ok := allowed[k]; ok {
			out[k] = v
			continue
		}
		if _, ok := commonEntityKeys[k]; ok {
			out[k] = v
			continue
		}
		dropped = append(dropped, k)
	}
	return out, dropped
}
