// Package chat holds the built-in sample conversation shown on the main
// surface and its personalisation for the current profile.
package chat

import "github.com/oshokin/tempwatch/internal/domain/profile"

// Message is one chat bubble.
type Message struct {
	Author string
	Body   string
	// Avatar is the picture location shown next to the bubble. Empty means
	// the default avatar.
	Avatar string
}

// Sample returns the built-in conversation. Each call returns a fresh slice.
func Sample() []Message {
	return []Message{
		{Author: profile.DefaultUsername, Body: "Test...Test...Test..."},
		{Author: profile.DefaultUsername, Body: "List of Android versions:\nAndroid KitKat (API 19)\n" +
			"Android Lollipop (API 21)\nAndroid Marshmallow (API 23)\nAndroid Nougat (API 24)\n" +
			"Android Oreo (API 26)\nAndroid Pie (API 28)\nAndroid 10 (API 29)\nAndroid 11 (API 30)\n" +
			"Android 12 (API 31)"},
		{Author: profile.DefaultUsername, Body: "I think Kotlin is my favorite programming language.\n" +
			"It's so much fun!"},
		{Author: "Colleague", Body: "Searching for alternatives to XML layouts..."},
		{Author: profile.DefaultUsername, Body: "Hey, take a look at Jetpack Compose, it's great!\n" +
			"It's the Android's modern toolkit for building native UI. It simplifies and accelerates " +
			"UI development on Android. Less code, powerful tools, and intuitive Kotlin APIs :)"},
		{Author: "Colleague", Body: "It's available from API 21+ :)"},
		{Author: profile.DefaultUsername, Body: "Writing Kotlin for UI seems so natural, Compose " +
			"where have you been all my life?"},
		{Author: "Colleague", Body: "Android Studio next version's name is Arctic Fox"},
		{Author: profile.DefaultUsername, Body: "Android Studio Arctic Fox tooling for Compose is top notch ^_^"},
		{Author: "Colleague", Body: "I didn't know you can now run the emulator directly from Android Studio"},
		{Author: profile.DefaultUsername, Body: "Compose Previews are great to check quickly how a " +
			"composable layout looks like"},
		{Author: "Colleague", Body: "Previews are also interactive after enabling the experimental setting"},
		{Author: profile.DefaultUsername, Body: "Have you tried writing build.gradle with KTS?"},
	}
}

// Personalize rewrites messages for p: the default author becomes the
// configured username and the user's own messages carry the custom picture.
func Personalize(messages []Message, p profile.UserProfile) []Message {
	result := make([]Message, len(messages))

	for i, m := range messages {
		if m.Author == profile.DefaultUsername {
			m.Author = p.Username
		}

		m.Avatar = ""
		if m.Author == p.Username && p.HasCustomImage() {
			m.Avatar = p.ProfileImageLocation
		}

		result[i] = m
	}

	return result
}
