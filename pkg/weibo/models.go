package weibo

import (
	"bytes"
	"encoding/json"
)

// OkFlag decodes the API's ok field, which is served as the number 1 on some
// deployments and the boolean true on others.
type OkFlag bool

func (f *OkFlag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true", "1":
		*f = true
		return nil
	case "false", "0", "null":
		*f = false
		return nil
	}

	// Fall back to a numeric decode for anything else the API invents.
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = n != 0
	return nil
}

// userInfoResponse mirrors the profile container payload. Only the fields the
// crawler consumes are declared.
type userInfoResponse struct {
	Ok   OkFlag `json:"ok"`
	Data struct {
		UserInfo struct {
			ID              json.Number `json:"id"`
			ScreenName      string      `json:"screen_name"`
			Gender          string      `json:"gender"`
			StatusesCount   int         `json:"statuses_count"`
			FollowersCount  int         `json:"followers_count"`
			FollowCount     int         `json:"follow_count"`
			Description     string      `json:"description"`
			ProfileURL      string      `json:"profile_url"`
			ProfileImageURL string      `json:"profile_image_url"`
			AvatarHD        string      `json:"avatar_hd"`
			Verified        bool        `json:"verified"`
			VerifiedType    int         `json:"verified_type"`
			VerifiedReason  string      `json:"verified_reason"`
		} `json:"userInfo"`
	} `json:"data"`
}
