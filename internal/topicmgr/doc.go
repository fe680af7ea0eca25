// Package topicmgr provides a strongly-typed topic registry that eliminates
// magic strings and centralizes the definitions of the channels flowing
// through the overlay's message bus.
//
// Framework topics are defined by core services:
//
//	var ClientConnected = topicmgr.DefineFramework(topicmgr.TopicConfig{
//		Name:        "hub.client.connected",
//		Description: "Published when an overlay client connects",
//	})
//
// Module topics are defined by pipeline modules:
//
//	var NewChat = topicmgr.DefineModule(topicmgr.TopicConfig{
//		Name:        "feed.chat.new",
//		Module:      "feed",
//		Description: "A live chat message arrived from a relay",
//	})
//
// Topics register with the process-wide manager:
//
//	topicmgr.Default().MustRegister(NewChat)
//
// and can be discovered at runtime:
//
//	all := topicmgr.Default().List()
//	feed := topicmgr.Default().ListModule("feed")
package topicmgr
