package gate

import (
	"context"
	"fmt"

	tele "gopkg.in/telebot.v4"
)

// MemberAPI is the slice of the bot client used for membership probes.
type MemberAPI interface {
	ChatMemberOf(chat, user tele.Recipient) (*tele.ChatMember, error)
}

// channelName addresses a channel by its public "@username", which
// tele.Chat cannot express (its Recipient renders the numeric id).
type channelName string

func (c channelName) Recipient() string { return string(c) }

// ChannelMembership probes one broadcast channel via the bot API.
type ChannelMembership struct {
	api     MemberAPI
	channel tele.Recipient
}

// NewChannelMembership probes the channel by username ("@channel").
func NewChannelMembership(api MemberAPI, channelUsername string) *ChannelMembership {
	return &ChannelMembership{
		api:     api,
		channel: channelName(channelUsername),
	}
}

// IsChannelMember treats member, administrator and creator as
// subscribed; left, kicked and restricted are not.
func (m *ChannelMembership) IsChannelMember(ctx context.Context, userID int64) (bool, error) {
	member, err := m.api.ChatMemberOf(m.channel, &tele.User{ID: userID})
	if err != nil {
		return false, fmt.Errorf("chat member of: %w", err)
	}
	switch member.Role {
	case tele.Member, tele.Administrator, tele.Creator:
		return true, nil
	default:
		return false, nil
	}
}
