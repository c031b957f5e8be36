package constants

const (
	MAX_PAGE_SIZE             = 100
	DEFAULT_OFFSET            = uint64(0)
	DEFAULT_BACKGROUNDS_LIMIT = 20
	DEFAULT_GIFT_CARDS_LIMIT  = 20
	DEFAULT_ACTIVITY_LIMIT    = 20
	DEFAULT_CHANGES_LIMIT     = 50
	DEFAULT_LEADERBOARD_LIMIT = 10
	MAX_LEADERBOARD_LIMIT     = 50
	MAX_MESSAGE_LENGTH        = 1024
	MAX_USERNAME_LENGTH       = 64
	MAX_BIO_LENGTH            = 500
)
