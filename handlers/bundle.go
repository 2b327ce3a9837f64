package handlers

// HandlerBundle groups the endpoint handlers registered by the router.
type HandlerBundle struct {
	Parking     *ParkingHandler
	Settings    *SettingsHandler
	Stats       *StatsHandler
	Recognition *RecognitionHandler
	Admin       *AdminHandler
}
